package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"legal-assistant-be/internal/entity"
	"legal-assistant-be/internal/repository/contract"
	"legal-assistant-be/internal/repository/specification"
	"legal-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory stand-ins for the GORM-backed repositories. They interpret
// the same specification values the real implementations feed to GORM,
// so service-level behavior is exercised against the identical query
// vocabulary.

type fakeStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*entity.User
	sessions     map[uuid.UUID]*entity.ChatSession
	messages     []*entity.ChatMessage
	rooms        map[uuid.UUID]*entity.Room
	roomMessages []*entity.RoomMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*entity.User),
		sessions: make(map[uuid.UUID]*entity.ChatSession),
		rooms:    make(map[uuid.UUID]*entity.Room),
	}
}

type fakeFactory struct {
	store *fakeStore
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

func newFakeFactory() (*fakeFactory, *fakeStore) {
	store := newFakeStore()
	return &fakeFactory{store: store}, store
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}

func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}

func (u *fakeUnitOfWork) RoomRepository() contract.RoomRepository {
	return &fakeRoomRepo{store: u.store}
}

func (u *fakeUnitOfWork) RoomMessageRepository() contract.RoomMessageRepository {
	return &fakeRoomMessageRepo{store: u.store}
}

// --- users ---

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *user
	r.store.users[user.Id] = &cp
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if userMatches(u, specs) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.User
	for _, id := range ids {
		if u, ok := r.store.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func userMatches(u *entity.User, specs []specification.Specification) bool {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByID:
			if u.Id != v.ID {
				return false
			}
		case specification.ByEmail:
			if u.Email != v.Email {
				return false
			}
		}
	}
	return true
}

// --- chat sessions ---

type fakeSessionRepo struct {
	store *fakeStore
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *session
	r.store.sessions[session.Id] = &cp
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	return r.Create(ctx, session)
}

func (r *fakeSessionRepo) DeleteUnscoped(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sessions {
		if sessionMatches(s, specs) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatSession
	for _, s := range r.store.sessions {
		if sessionMatches(s, specs) {
			cp := *s
			out = append(out, &cp)
		}
	}
	for _, s := range specs {
		if ob, ok := s.(specification.OrderBy); ok && ob.Field == "updated_at" {
			sort.Slice(out, func(i, j int) bool {
				if ob.Desc {
					return out[i].UpdatedAt.After(out[j].UpdatedAt)
				}
				return out[i].UpdatedAt.Before(out[j].UpdatedAt)
			})
		}
	}
	return out, nil
}

func sessionMatches(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.UserOwnedBy:
			if s.UserId != v.UserID {
				return false
			}
		}
	}
	return true
}

// --- chat messages ---

type fakeMessageRepo struct {
	store *fakeStore
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *entity.ChatMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *msg
	r.store.messages = append(r.store.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range r.store.messages {
		if messageMatches(m, specs) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *fakeMessageRepo) DeleteBySessionUnscoped(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.messages[:0]
	for _, m := range r.store.messages {
		if m.ChatSessionId != sessionId {
			kept = append(kept, m)
		}
	}
	r.store.messages = kept
	return nil
}

func messageMatches(m *entity.ChatMessage, specs []specification.Specification) bool {
	for _, spec := range specs {
		if v, ok := spec.(specification.ByChatSessionID); ok && m.ChatSessionId != v.ChatSessionID {
			return false
		}
	}
	return true
}

// --- rooms ---

type fakeRoomRepo struct {
	store *fakeStore
}

func (r *fakeRoomRepo) CreateIdempotent(ctx context.Context, room *entity.Room) (*entity.Room, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.rooms {
		if existing.PairKey == room.PairKey {
			cp := *existing
			return &cp, false, nil
		}
	}
	cp := *room
	r.store.rooms[room.Id] = &cp
	out := cp
	return &out, true, nil
}

func (r *fakeRoomRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Room, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, room := range r.store.rooms {
		if roomMatches(room, specs) {
			cp := *room
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRoomRepo) FindAllForUser(ctx context.Context, userId uuid.UUID) ([]*entity.Room, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Room
	for _, room := range r.store.rooms {
		if room.HasParticipant(userId) {
			cp := *room
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	return out, nil
}

func (r *fakeRoomRepo) UpdateLastActivity(ctx context.Context, roomId uuid.UUID, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if room, ok := r.store.rooms[roomId]; ok {
		room.LastActivityAt = at
	}
	return nil
}

func roomMatches(room *entity.Room, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if room.Id != v.ID {
				return false
			}
		case specification.ByPairKey:
			if room.PairKey != v.PairKey {
				return false
			}
		case specification.HasParticipant:
			if !room.HasParticipant(v.UserID) {
				return false
			}
		}
	}
	return true
}

// --- room messages ---

type fakeRoomMessageRepo struct {
	store *fakeStore
}

func (r *fakeRoomMessageRepo) Create(ctx context.Context, msg *entity.RoomMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *msg
	r.store.roomMessages = append(r.store.roomMessages, &cp)
	return nil
}

func (r *fakeRoomMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RoomMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.RoomMessage
	for _, m := range r.store.roomMessages {
		ok := true
		for _, spec := range specs {
			if v, isRoom := spec.(specification.ByRoomID); isRoom && m.RoomId != v.RoomID {
				ok = false
			}
		}
		if ok {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	for _, spec := range specs {
		if p, isPage := spec.(specification.Pagination); isPage {
			if p.Offset < len(out) {
				out = out[p.Offset:]
			} else {
				out = nil
			}
			if p.Limit > 0 && p.Limit < len(out) {
				out = out[:p.Limit]
			}
		}
	}
	return out, nil
}
