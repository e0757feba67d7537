package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type AccountRow struct {
	Name         string
	PasswordHash string
	Banned       bool
	Online       bool
	CreatedAt    time.Time
	LastActive   *time.Time
}

type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

// Load returns the account row, or nil when the account does not exist.
func (r *AccountRepo) Load(ctx context.Context, name string) (*AccountRow, error) {
	row := &AccountRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT name, password_hash, banned, online, created_at, last_active
		 FROM accounts WHERE name = $1`, name,
	).Scan(&row.Name, &row.PasswordHash, &row.Banned, &row.Online, &row.CreatedAt, &row.LastActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// VerifyPassword checks a raw password against the stored bcrypt hash.
func (r *AccountRepo) VerifyPassword(row *AccountRow, rawPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(rawPassword)) == nil
}

// Create inserts a new account with a bcrypt-hashed password.
func (r *AccountRepo) Create(ctx context.Context, name, rawPassword string) (*AccountRow, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	row := &AccountRow{Name: name, PasswordHash: string(hash), CreatedAt: now}
	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO accounts (name, password_hash, created_at) VALUES ($1, $2, $3)`,
		row.Name, row.PasswordHash, row.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// SetOnline flips the online flag and stamps last_active.
func (r *AccountRepo) SetOnline(ctx context.Context, name string, online bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET online = $2, last_active = now() WHERE name = $1`,
		name, online,
	)
	return err
}
