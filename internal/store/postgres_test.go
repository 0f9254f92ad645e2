package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mingxw/aerochat/backend/internal/model/chat"
	"github.com/mingxw/aerochat/backend/internal/model/reservation"
	"github.com/mingxw/aerochat/backend/internal/model/user"
	"github.com/mingxw/aerochat/backend/internal/store"
)

// setupPostgres connects to the database named by TEST_DATABASE_URL and runs
// migrations. Tests are skipped when no database is available.
func setupPostgres(t *testing.T) *store.Postgres {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pg, err := store.NewPostgres(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not reachable: %v", err)
	}
	t.Cleanup(func() { _ = pg.Close() })

	require.NoError(t, pg.Migrate(ctx))
	return pg
}

func TestPostgresUserRoundTrip(t *testing.T) {
	pg := setupPostgres(t)
	ctx := context.Background()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, pg.CreateUser(ctx, u))

	got, err := pg.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	dup := user.User{ID: uuid.NewString(), Email: u.Email, PasswordHash: "other"}
	assert.ErrorIs(t, pg.CreateUser(ctx, dup), store.ErrAlreadyExists)

	_, err = pg.GetUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresChatRoundTrip(t *testing.T) {
	pg := setupPostgres(t)
	ctx := context.Background()

	owner := user.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.com", PasswordHash: "hash"}
	require.NoError(t, pg.CreateUser(ctx, owner))

	c := chat.Chat{
		ID:     uuid.NewString(),
		UserID: owner.ID,
		Title:  "Weekend trip",
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: "find me a flight"},
		},
	}
	require.NoError(t, pg.SaveChat(ctx, c))

	got, err := pg.GetChatByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekend trip", got.Title)
	require.Len(t, got.Messages, 1)

	c.Title = "should not overwrite"
	c.Messages = append(c.Messages, chat.Message{Role: chat.RoleAssistant, Content: "sure, where to?"})
	require.NoError(t, pg.SaveChat(ctx, c))

	got, err = pg.GetChatByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekend trip", got.Title)
	require.Len(t, got.Messages, 2)

	chats, err := pg.ListChatsByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)

	require.NoError(t, pg.DeleteChatByID(ctx, c.ID))
	assert.ErrorIs(t, pg.DeleteChatByID(ctx, c.ID), store.ErrNotFound)
}

func TestPostgresReservationRoundTrip(t *testing.T) {
	pg := setupPostgres(t)
	ctx := context.Background()

	owner := user.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.com", PasswordHash: "hash"}
	require.NoError(t, pg.CreateUser(ctx, owner))

	r := reservation.Reservation{
		ID:     uuid.NewString(),
		UserID: owner.ID,
		Details: reservation.Details{
			FlightNumber:    "DL117",
			PassengerName:   "Bob Li",
			Seats:           []string{"14C", "14D"},
			TotalPriceInUSD: 812.25,
		},
	}
	require.NoError(t, pg.CreateReservation(ctx, r))

	got, err := pg.GetReservationByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "DL117", got.Details.FlightNumber)
	assert.Equal(t, []string{"14C", "14D"}, got.Details.Seats)
	assert.False(t, got.HasCompletedPayment)

	got.HasCompletedPayment = true
	require.NoError(t, pg.UpdateReservation(ctx, got))

	updated, err := pg.GetReservationByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, updated.HasCompletedPayment)

	err = pg.UpdateReservation(ctx, reservation.Reservation{ID: uuid.NewString()})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
