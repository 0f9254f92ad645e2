package store

import (
	"context"
	"errors"

	"github.com/mingxw/aerochat/backend/internal/model/chat"
	"github.com/mingxw/aerochat/backend/internal/model/reservation"
	"github.com/mingxw/aerochat/backend/internal/model/user"
)

var (
	// ErrNotFound reports that the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists reports a uniqueness conflict, such as a duplicate email.
	ErrAlreadyExists = errors.New("record already exists")
)

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) error
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	GetUserByID(ctx context.Context, id string) (user.User, error)
}

// ChatStore persists conversations keyed by their client-supplied IDs.
// SaveChat inserts a new chat or, when the ID already exists, replaces the
// stored transcript while keeping the original title, owner and creation time.
type ChatStore interface {
	SaveChat(ctx context.Context, c chat.Chat) error
	GetChatByID(ctx context.Context, id string) (chat.Chat, error)
	DeleteChatByID(ctx context.Context, id string) error
	ListChatsByUser(ctx context.Context, userID string) ([]chat.Chat, error)
}

// ReservationStore persists bookings.
type ReservationStore interface {
	CreateReservation(ctx context.Context, r reservation.Reservation) error
	GetReservationByID(ctx context.Context, id string) (reservation.Reservation, error)
	UpdateReservation(ctx context.Context, r reservation.Reservation) error
}

// Store aggregates every accessor the handlers and tools depend on.
type Store interface {
	UserStore
	ChatStore
	ReservationStore

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error
}
