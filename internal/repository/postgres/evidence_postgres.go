package postgres

import (
	"context"
	"database/sql"

	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

// EvidencePostgres is a PostgreSQL implementation of repository.EvidenceRepository.
// It stores metadata only; file contents live in object storage.
type EvidencePostgres struct {
	db *sql.DB
}

// NewEvidencePostgres creates a new EvidencePostgres repository.
func NewEvidencePostgres(db *sql.DB) *EvidencePostgres {
	return &EvidencePostgres{db: db}
}

var _ repository.EvidenceRepository = (*EvidencePostgres)(nil)

// Create inserts a new evidence row and returns the stored record.
func (r *EvidencePostgres) Create(ctx context.Context, e *model.Evidence) (*model.Evidence, error) {
	const q = `
		INSERT INTO dispute_evidence (id, dispute_id, filename, storage_path, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, dispute_id, filename, storage_path, size, content_type, created_at
	`
	row := conn(ctx, r.db).QueryRowContext(ctx, q,
		e.ID,
		e.DisputeID,
		e.Filename,
		e.StoragePath,
		e.Size,
		e.ContentType,
		e.CreatedAt,
	)
	var out model.Evidence
	if err := row.Scan(
		&out.ID,
		&out.DisputeID,
		&out.Filename,
		&out.StoragePath,
		&out.Size,
		&out.ContentType,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single evidence record by its ID.
func (r *EvidencePostgres) FindByID(ctx context.Context, id string) (*model.Evidence, error) {
	const q = `
		SELECT id, dispute_id, filename, storage_path, size, content_type, created_at
		FROM dispute_evidence
		WHERE id = $1
	`
	var e model.Evidence
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, id).Scan(
		&e.ID,
		&e.DisputeID,
		&e.Filename,
		&e.StoragePath,
		&e.Size,
		&e.ContentType,
		&e.CreatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

// ListByDispute returns the evidence uploaded for a dispute, oldest first.
func (r *EvidencePostgres) ListByDispute(ctx context.Context, disputeID string) ([]model.Evidence, error) {
	const q = `
		SELECT id, dispute_id, filename, storage_path, size, content_type, created_at
		FROM dispute_evidence
		WHERE dispute_id = $1
		ORDER BY created_at, id
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Evidence, 0)
	for rows.Next() {
		var e model.Evidence
		if err := rows.Scan(
			&e.ID,
			&e.DisputeID,
			&e.Filename,
			&e.StoragePath,
			&e.Size,
			&e.ContentType,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
