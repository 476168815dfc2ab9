package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Room struct {
	Id             uuid.UUID
	PairKey        string
	CaseMetadata   map[string]interface{}
	Archived       bool
	LastActivityAt time.Time
	CreatedAt      time.Time
	ParticipantIds []uuid.UUID
}

// HasParticipant reports membership; all room reads are gated on it.
func (r *Room) HasParticipant(userId uuid.UUID) bool {
	for _, id := range r.ParticipantIds {
		if id == userId {
			return true
		}
	}
	return false
}

// PairKeyFor canonicalizes an unordered participant set so both sides of
// a concurrent "start chat" race compute the same key.
func PairKeyFor(participantIds []uuid.UUID) string {
	keys := make([]string, len(participantIds))
	for i, id := range participantIds {
		keys[i] = id.String()
	}
	sort.Strings(keys)
	return strings.Join(keys, ":")
}

type RoomMessage struct {
	Id        uuid.UUID
	RoomId    uuid.UUID
	SenderId  uuid.UUID
	Content   string
	CreatedAt time.Time
}

// Contact is the derived, per-identity read model over rooms. It is
// recomputed on demand and never stored.
type Contact struct {
	RoomId         uuid.UUID
	Other          ProfileSummary
	LastActivityAt time.Time
}
