package persist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

type CharacterRow struct {
	ID          int32
	AccountName string
	Name        string
	Level       int16
	HP          int32
	MaxHP       int32
	Attack      int32
	Defense     int32
	X           int32
	Y           int32
	MapID       int16
	Heading     int16
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// LoadByName returns the character row, or nil when no such character.
func (r *CharacterRepo) LoadByName(ctx context.Context, name string) (*CharacterRow, error) {
	row := &CharacterRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, account_name, name, level, hp, max_hp, attack, defense, x, y, map_id, heading
		 FROM characters WHERE name = $1`, name,
	).Scan(
		&row.ID, &row.AccountName, &row.Name, &row.Level, &row.HP, &row.MaxHP,
		&row.Attack, &row.Defense, &row.X, &row.Y, &row.MapID, &row.Heading,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Create inserts a fresh character for an account.
func (r *CharacterRepo) Create(ctx context.Context, row *CharacterRow) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (account_name, name, level, hp, max_hp, attack, defense, x, y, map_id, heading)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11) RETURNING id`,
		row.AccountName, row.Name, row.Level, row.HP, row.MaxHP,
		row.Attack, row.Defense, row.X, row.Y, row.MapID, row.Heading,
	).Scan(&row.ID)
}

// Save writes a character's mutable state back.
func (r *CharacterRepo) Save(ctx context.Context, row *CharacterRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET level=$2, hp=$3, max_hp=$4, attack=$5, defense=$6,
		        x=$7, y=$8, map_id=$9, heading=$10
		 WHERE id=$1`,
		row.ID, row.Level, row.HP, row.MaxHP, row.Attack, row.Defense,
		row.X, row.Y, row.MapID, row.Heading,
	)
	return err
}
