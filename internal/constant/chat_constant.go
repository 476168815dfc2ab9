package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleBot    = "bot"
	ChatMessageRoleSystem = "system"

	// SessionTitlePrefixLen is how many characters of the first user
	// message become the session title.
	SessionTitlePrefixLen = 30
	SessionTitleEllipsis  = "..."

	// ChatFallbackReply is stored verbatim as the bot message when the
	// completion backend fails or times out. A committed user message is
	// never left without a paired reply.
	ChatFallbackReply = "I'm sorry, I wasn't able to answer that just now. Please try again in a moment."

	LegalAssistantSystemPrompt = `You are a legal assistant. Answer questions about law clearly and concisely.
Base your answers on generally accepted legal principles, say when something varies by jurisdiction, and remind the user that you are not a substitute for a licensed attorney when the question calls for formal legal advice.`
)
