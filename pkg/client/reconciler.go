// Package client is a small SDK for keeping a local replica of the
// contact list in sync with the server. The server only ever pushes
// hints; on every hint (and on every reconnect) the replica is replaced
// wholesale from the authoritative HTTP endpoint, never patched.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	defaultRefetchTimeout = 10 * time.Second
	maxReconnectDelay     = 30 * time.Second
)

// Contact mirrors the server's contact projection.
type Contact struct {
	RoomId         uuid.UUID `json:"room_id"`
	UserId         uuid.UUID `json:"user_id"`
	FullName       string    `json:"full_name"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type apiResponse struct {
	Data []Contact `json:"data"`
}

// Reconciler listens for ROOM_CHANGED hints over a websocket and
// reconciles the local contact replica by re-fetching it.
type Reconciler struct {
	baseURL    string
	wsURL      string
	token      string
	httpClient *http.Client
	onUpdate   func([]Contact)

	mu       sync.RWMutex
	contacts []Contact
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Reconciler) { r.httpClient = hc }
}

// WithOnUpdate registers a callback invoked after every successful
// reconcile with the fresh replica.
func WithOnUpdate(fn func([]Contact)) Option {
	return func(r *Reconciler) { r.onUpdate = fn }
}

// NewReconciler builds a reconciler against the given API base URL
// (e.g. "http://localhost:3000") and websocket URL
// (e.g. "ws://localhost:3000/api/notification/v1/ws").
func NewReconciler(baseURL, wsURL, token string, opts ...Option) *Reconciler {
	r := &Reconciler{
		baseURL:    baseURL,
		wsURL:      wsURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultRefetchTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Contacts returns a snapshot of the current replica.
func (r *Reconciler) Contacts() []Contact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Contact, len(r.contacts))
	copy(out, r.contacts)
	return out
}

// Run connects and listens until the context is cancelled, reconnecting
// with backoff on failure. Every (re)connect triggers a full reconcile,
// since hints sent while disconnected are gone for good.
func (r *Reconciler) Run(ctx context.Context) error {
	delay := time.Second
	for {
		dialed, err := r.runOnce(ctx)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		// A session that got past the dial earns a fresh backoff; only
		// consecutive failed dials escalate the wait.
		if dialed {
			delay = time.Second
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

// runOnce reports whether the dial succeeded, so the caller can tell a
// dropped session apart from a server that is still down.
func (r *Reconciler) runOnce(ctx context.Context) (bool, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, r.wsURL+"?token="+r.token, nil)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// The replica may have gone stale while we were away.
	if err := r.Reconcile(ctx); err != nil {
		return true, err
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("read: %w", err)
		}
		if r.frameWantsReconcile(frame) {
			if err := r.Reconcile(ctx); err != nil {
				return true, err
			}
		}
	}
}

// frameWantsReconcile reports whether any envelope in the frame is a
// ROOM_CHANGED hint. The server batches queued envelopes into a single
// frame, so decode until the stream runs dry. The room id inside the
// hint is deliberately ignored: the whole list is re-fetched regardless.
func (r *Reconciler) frameWantsReconcile(frame []byte) bool {
	dec := json.NewDecoder(bytes.NewReader(frame))
	for {
		var env envelope
		if err := dec.Decode(&env); err != nil {
			if !errors.Is(err, io.EOF) {
				// Unknown garbage in the frame; reconciling is always safe.
				return true
			}
			return false
		}
		if env.Type == "ROOM_CHANGED" {
			return true
		}
	}
}

// Reconcile replaces the replica with the server's authoritative list.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/courtroom/v1/contacts", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch contacts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch contacts: unexpected status %d", resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode contacts: %w", err)
	}

	r.mu.Lock()
	r.contacts = parsed.Data
	r.mu.Unlock()

	if r.onUpdate != nil {
		r.onUpdate(parsed.Data)
	}
	return nil
}
