package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mingxw/aerochat/backend/internal/model/chat"
	"github.com/mingxw/aerochat/backend/internal/model/reservation"
	"github.com/mingxw/aerochat/backend/internal/model/user"
)

// Memory is the in-memory Store used when no database is configured. It keeps
// the API fully functional for local runs and doubles as the fixture store in
// handler tests.
type Memory struct {
	mu           sync.RWMutex
	users        map[string]user.User
	usersByEmail map[string]string
	chats        map[string]chat.Chat
	reservations map[string]reservation.Reservation
}

// NewMemory bootstraps an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		chats:        make(map[string]chat.Chat),
		reservations: make(map[string]reservation.Reservation),
	}
}

// CreateUser registers a new account.
func (m *Memory) CreateUser(_ context.Context, u user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.usersByEmail[u.Email]; ok {
		return ErrAlreadyExists
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	m.users[u.ID] = u
	m.usersByEmail[u.Email] = u.ID
	return nil
}

// GetUserByEmail looks up an account by its email.
func (m *Memory) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usersByEmail[email]
	if !ok {
		return user.User{}, ErrNotFound
	}
	return m.users[id], nil
}

// GetUserByID looks up an account by its identifier.
func (m *Memory) GetUserByID(_ context.Context, id string) (user.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return user.User{}, ErrNotFound
	}
	return u, nil
}

// SaveChat inserts the chat or, when the ID is already stored, replaces its
// transcript while keeping the original title, owner and creation time.
func (m *Memory) SaveChat(_ context.Context, c chat.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.chats[c.ID]; ok {
		existing.Messages = copyMessages(c.Messages)
		m.chats[c.ID] = existing
		return nil
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.Messages = copyMessages(c.Messages)
	m.chats[c.ID] = c
	return nil
}

// GetChatByID retrieves a stored conversation.
func (m *Memory) GetChatByID(_ context.Context, id string) (chat.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.chats[id]
	if !ok {
		return chat.Chat{}, ErrNotFound
	}
	c.Messages = copyMessages(c.Messages)
	return c, nil
}

// DeleteChatByID removes a stored conversation.
func (m *Memory) DeleteChatByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chats[id]; !ok {
		return ErrNotFound
	}
	delete(m.chats, id)
	return nil
}

// ListChatsByUser returns the user's conversations, newest first.
func (m *Memory) ListChatsByUser(_ context.Context, userID string) ([]chat.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chats := make([]chat.Chat, 0, 8)
	for _, c := range m.chats {
		if c.UserID != userID {
			continue
		}
		c.Messages = copyMessages(c.Messages)
		chats = append(chats, c)
	}

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
	return chats, nil
}

// CreateReservation stores a new booking.
func (m *Memory) CreateReservation(_ context.Context, r reservation.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reservations[r.ID]; ok {
		return ErrAlreadyExists
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.reservations[r.ID] = r
	return nil
}

// GetReservationByID retrieves a booking.
func (m *Memory) GetReservationByID(_ context.Context, id string) (reservation.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reservations[id]
	if !ok {
		return reservation.Reservation{}, ErrNotFound
	}
	return r, nil
}

// UpdateReservation replaces a stored booking.
func (m *Memory) UpdateReservation(_ context.Context, r reservation.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.reservations[r.ID]
	if !ok {
		return ErrNotFound
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = existing.CreatedAt
	}
	m.reservations[r.ID] = r
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *Memory) Ping(_ context.Context) error { return nil }

func copyMessages(messages []chat.Message) []chat.Message {
	if messages == nil {
		return nil
	}
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied
}
