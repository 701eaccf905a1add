package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atmello/partscan/internal/models"
)

type HistoryRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Insert(ctx context.Context, record *models.ImageRecord) error {
	query := `
		INSERT INTO image_records (
			id, original_image_path, processed_image_path, timestamp, detection_results, filename
		) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn.ExecContext(ctx, query,
		record.ID,
		record.OriginalImagePath,
		record.ProcessedImagePath,
		record.Timestamp,
		record.DetectionResults,
		record.Filename,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image record: %w", err)
	}
	return nil
}

func (r *HistoryRepository) GetByID(ctx context.Context, id string) (*models.ImageRecord, error) {
	query := `
		SELECT id, original_image_path, processed_image_path, timestamp, detection_results, filename
		FROM image_records
		WHERE id = ?`

	record := &models.ImageRecord{}
	var detectionResults sql.NullString
	err := r.db.conn.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.OriginalImagePath,
		&record.ProcessedImagePath,
		&record.Timestamp,
		&detectionResults,
		&record.Filename,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image record: %w", err)
	}
	if detectionResults.Valid {
		record.DetectionResults = &detectionResults.String
	}
	return record, nil
}

func (r *HistoryRepository) List(ctx context.Context) ([]models.ImageRecord, error) {
	query := `
		SELECT id, original_image_path, processed_image_path, timestamp, detection_results, filename
		FROM image_records
		ORDER BY timestamp DESC`

	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list image records: %w", err)
	}
	defer rows.Close()

	var records []models.ImageRecord
	for rows.Next() {
		var record models.ImageRecord
		var detectionResults sql.NullString
		if err := rows.Scan(
			&record.ID,
			&record.OriginalImagePath,
			&record.ProcessedImagePath,
			&record.Timestamp,
			&detectionResults,
			&record.Filename,
		); err != nil {
			return nil, fmt.Errorf("failed to scan image record: %w", err)
		}
		if detectionResults.Valid {
			record.DetectionResults = &detectionResults.String
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *HistoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM image_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
