package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/mingxw/aerochat/backend/internal/model/chat"
	"github.com/mingxw/aerochat/backend/internal/model/reservation"
	"github.com/mingxw/aerochat/backend/internal/model/user"
)

type userSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk,type:uuid"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type chatSchema struct {
	bun.BaseModel `bun:"table:chats,alias:c"`

	ID        string         `bun:"id,pk"`
	UserID    string         `bun:"user_id,notnull,type:uuid"`
	Title     string         `bun:"title"`
	Messages  []chat.Message `bun:"messages,type:jsonb"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type reservationSchema struct {
	bun.BaseModel `bun:"table:reservations,alias:r"`

	ID                  string              `bun:"id,pk,type:uuid"`
	UserID              string              `bun:"user_id,notnull,type:uuid"`
	Details             reservation.Details `bun:"details,type:jsonb"`
	HasCompletedPayment bool                `bun:"has_completed_payment,notnull,default:false"`
	CreatedAt           time.Time           `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Postgres is the durable Store backed by PostgreSQL through bun.
type Postgres struct {
	db *bun.DB
}

// NewPostgres opens a connection pool against dsn and verifies reachability.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(16)
	sqldb.SetMaxIdleConns(8)
	sqldb.SetConnMaxLifetime(time.Hour)

	db := bun.NewDB(sqldb, pgdialect.New())
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Migrate creates the tables and indexes the store relies on.
func (p *Postgres) Migrate(ctx context.Context) error {
	return createTables(ctx, p.db)
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error { return p.db.Close() }

// Ping reports whether the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// CreateUser registers a new account.
func (p *Postgres) CreateUser(ctx context.Context, u user.User) error {
	row := userSchema{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}

	_, err := p.db.NewInsert().Model(&row).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail looks up an account by its email.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userSchema
	err := p.db.NewSelect().Model(&row).Where("u.email = ?", email).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, fmt.Errorf("select user by email: %w", err)
	}
	return userFromSchema(row), nil
}

// GetUserByID looks up an account by its identifier.
func (p *Postgres) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var row userSchema
	err := p.db.NewSelect().Model(&row).Where("u.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, fmt.Errorf("select user by id: %w", err)
	}
	return userFromSchema(row), nil
}

// SaveChat inserts the chat or, when the ID is already stored, replaces its
// transcript while keeping the original title, owner and creation time.
func (p *Postgres) SaveChat(ctx context.Context, c chat.Chat) error {
	row := chatSchema{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		Messages:  c.Messages,
		CreatedAt: c.CreatedAt,
	}

	_, err := p.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("messages = EXCLUDED.messages").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save chat: %w", err)
	}
	return nil
}

// GetChatByID retrieves a stored conversation.
func (p *Postgres) GetChatByID(ctx context.Context, id string) (chat.Chat, error) {
	var row chatSchema
	err := p.db.NewSelect().Model(&row).Where("c.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return chat.Chat{}, ErrNotFound
		}
		return chat.Chat{}, fmt.Errorf("select chat: %w", err)
	}
	return chatFromSchema(row), nil
}

// DeleteChatByID removes a stored conversation.
func (p *Postgres) DeleteChatByID(ctx context.Context, id string) error {
	res, err := p.db.NewDelete().
		Model((*chatSchema)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListChatsByUser returns the user's conversations, newest first.
func (p *Postgres) ListChatsByUser(ctx context.Context, userID string) ([]chat.Chat, error) {
	var rows []chatSchema
	err := p.db.NewSelect().
		Model(&rows).
		Where("c.user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	chats := make([]chat.Chat, 0, len(rows))
	for _, row := range rows {
		chats = append(chats, chatFromSchema(row))
	}
	return chats, nil
}

// CreateReservation stores a new booking.
func (p *Postgres) CreateReservation(ctx context.Context, r reservation.Reservation) error {
	row := reservationSchema{
		ID:                  r.ID,
		UserID:              r.UserID,
		Details:             r.Details,
		HasCompletedPayment: r.HasCompletedPayment,
		CreatedAt:           r.CreatedAt,
	}

	_, err := p.db.NewInsert().Model(&row).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

// GetReservationByID retrieves a booking.
func (p *Postgres) GetReservationByID(ctx context.Context, id string) (reservation.Reservation, error) {
	var row reservationSchema
	err := p.db.NewSelect().Model(&row).Where("r.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reservation.Reservation{}, ErrNotFound
		}
		return reservation.Reservation{}, fmt.Errorf("select reservation: %w", err)
	}
	return reservationFromSchema(row), nil
}

// UpdateReservation replaces the mutable fields of a stored booking.
func (p *Postgres) UpdateReservation(ctx context.Context, r reservation.Reservation) error {
	row := reservationSchema{
		ID:                  r.ID,
		UserID:              r.UserID,
		Details:             r.Details,
		HasCompletedPayment: r.HasCompletedPayment,
	}

	res, err := p.db.NewUpdate().
		Model(&row).
		Column("details", "has_completed_payment").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

func userFromSchema(row userSchema) user.User {
	return user.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
	}
}

func chatFromSchema(row chatSchema) chat.Chat {
	return chat.Chat{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Messages:  row.Messages,
		CreatedAt: row.CreatedAt,
	}
}

func reservationFromSchema(row reservationSchema) reservation.Reservation {
	return reservation.Reservation{
		ID:                  row.ID,
		UserID:              row.UserID,
		Details:             row.Details,
		HasCompletedPayment: row.HasCompletedPayment,
		CreatedAt:           row.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
