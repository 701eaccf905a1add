package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atmello/partscan/internal/models"
)

type PartRepository struct {
	db *DB
}

func NewPartRepository(db *DB) *PartRepository {
	return &PartRepository{db: db}
}

func (r *PartRepository) GetByID(ctx context.Context, id string) (*models.Part, error) {
	return r.get(ctx, `SELECT id, name, quantity FROM parts WHERE id = ?`, id)
}

func (r *PartRepository) GetByName(ctx context.Context, name string) (*models.Part, error) {
	return r.get(ctx, `SELECT id, name, quantity FROM parts WHERE name = ?`, name)
}

func (r *PartRepository) get(ctx context.Context, query, arg string) (*models.Part, error) {
	part := &models.Part{}
	err := r.db.conn.QueryRowContext(ctx, query, arg).Scan(&part.ID, &part.Name, &part.Quantity)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get part: %w", err)
	}
	return part, nil
}

func (r *PartRepository) List(ctx context.Context) ([]models.Part, error) {
	rows, err := r.db.conn.QueryContext(ctx, `SELECT id, name, quantity FROM parts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer rows.Close()

	var parts []models.Part
	for rows.Next() {
		var part models.Part
		if err := rows.Scan(&part.ID, &part.Name, &part.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}

// EnsurePart returns the part with the given normalized name, creating it
// with quantity 0 if absent. The name uniqueness constraint makes this safe
// under concurrent identical detections: a losing insert is a no-op and the
// following select picks up the winner's row.
func (r *PartRepository) EnsurePart(ctx context.Context, name string) (*models.Part, error) {
	candidate := models.NewPart(name)
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO parts (id, name, quantity) VALUES (?, ?, 0) ON CONFLICT(name) DO NOTHING`,
		candidate.ID, candidate.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure part %q: %w", name, err)
	}
	return r.GetByName(ctx, name)
}

// SetQuantity overwrites the stored quantity, last write wins. The caller
// validates quantity >= 0; the table CHECK constraint backs that up.
func (r *PartRepository) SetQuantity(ctx context.Context, id string, quantity int) error {
	result, err := r.db.conn.ExecContext(ctx, `UPDATE parts SET quantity = ? WHERE id = ?`, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to update part quantity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update part quantity: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed makes sure the given part names exist with quantity 0. Re-running is
// a no-op for names already present.
func (r *PartRepository) Seed(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := r.EnsurePart(ctx, models.NormalizePartName(name)); err != nil {
			return fmt.Errorf("failed to seed part %q: %w", name, err)
		}
	}
	return nil
}
