package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mingxw/aerochat/backend/internal/model/chat"
	"github.com/mingxw/aerochat/backend/internal/model/reservation"
	"github.com/mingxw/aerochat/backend/internal/model/user"
	"github.com/mingxw/aerochat/backend/internal/store"
)

func TestMemoryUserLifecycle(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	u := user.User{ID: "u1", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, m.CreateUser(ctx, u))

	got, err := m.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	byID, err := m.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	err = m.CreateUser(ctx, user.User{ID: "u2", Email: "alice@example.com"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = m.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryChatLifecycle(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	c := chat.Chat{
		ID:     "chat-1",
		UserID: "u1",
		Title:  "Flight to SFO",
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: "hello"},
		},
	}
	require.NoError(t, m.SaveChat(ctx, c))

	got, err := m.GetChatByID(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "Flight to SFO", got.Title)
	require.Len(t, got.Messages, 1)
	createdAt := got.CreatedAt
	assert.False(t, createdAt.IsZero())

	// Re-saving replaces the transcript but keeps title, owner and creation time.
	updated := chat.Chat{
		ID:     "chat-1",
		UserID: "u1",
		Title:  "should be ignored",
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: "hello"},
			{Role: chat.RoleAssistant, Content: "hi, where are you flying?"},
		},
	}
	require.NoError(t, m.SaveChat(ctx, updated))

	got, err = m.GetChatByID(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "Flight to SFO", got.Title)
	assert.Equal(t, createdAt, got.CreatedAt)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chat.RoleAssistant, got.Messages[1].Role)

	require.NoError(t, m.DeleteChatByID(ctx, "chat-1"))
	_, err = m.GetChatByID(ctx, "chat-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, m.DeleteChatByID(ctx, "chat-1"), store.ErrNotFound)
}

func TestMemoryListChatsByUser(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	older := chat.Chat{ID: "c1", UserID: "u1", CreatedAt: time.Now().Add(-time.Hour)}
	newer := chat.Chat{ID: "c2", UserID: "u1", CreatedAt: time.Now()}
	other := chat.Chat{ID: "c3", UserID: "u2", CreatedAt: time.Now()}
	require.NoError(t, m.SaveChat(ctx, older))
	require.NoError(t, m.SaveChat(ctx, newer))
	require.NoError(t, m.SaveChat(ctx, other))

	chats, err := m.ListChatsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "c2", chats[0].ID)
	assert.Equal(t, "c1", chats[1].ID)

	empty, err := m.ListChatsByUser(ctx, "u3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryChatReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveChat(ctx, chat.Chat{
		ID:       "chat-1",
		UserID:   "u1",
		Messages: []chat.Message{{Role: chat.RoleUser, Content: "original"}},
	}))

	got, err := m.GetChatByID(ctx, "chat-1")
	require.NoError(t, err)
	got.Messages[0].Content = "mutated"

	fresh, err := m.GetChatByID(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "original", fresh.Messages[0].Content)
}

func TestMemoryReservationLifecycle(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	r := reservation.Reservation{
		ID:     "res-1",
		UserID: "u1",
		Details: reservation.Details{
			FlightNumber:    "UA482",
			PassengerName:   "Alice Chen",
			Seats:           []string{"12A"},
			TotalPriceInUSD: 431.5,
		},
	}
	require.NoError(t, m.CreateReservation(ctx, r))
	assert.ErrorIs(t, m.CreateReservation(ctx, r), store.ErrAlreadyExists)

	got, err := m.GetReservationByID(ctx, "res-1")
	require.NoError(t, err)
	assert.False(t, got.HasCompletedPayment)
	assert.False(t, got.CreatedAt.IsZero())

	got.HasCompletedPayment = true
	require.NoError(t, m.UpdateReservation(ctx, got))

	updated, err := m.GetReservationByID(ctx, "res-1")
	require.NoError(t, err)
	assert.True(t, updated.HasCompletedPayment)
	assert.Equal(t, got.CreatedAt, updated.CreatedAt)

	err = m.UpdateReservation(ctx, reservation.Reservation{ID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = m.GetReservationByID(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemoryPing(t *testing.T) {
	assert.NoError(t, store.NewMemory().Ping(context.Background()))
}
