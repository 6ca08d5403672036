package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/hackathon-ops/models"
)

type postgresArrivalRepository struct {
	exec SQLExecutor
}

func (r *postgresArrivalRepository) Create(ctx context.Context, record *models.ArrivalRecord) error {
	query := `INSERT INTO arrivals (person_id, state, updated_at) VALUES ($1, $2, $3)`
	_, err := r.exec.ExecContext(ctx, query, record.PersonID, record.State, record.UpdatedAt)
	if err != nil {
		if mapped := translatePQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create arrival record for person %d: %w", record.PersonID, err)
	}
	return nil
}

func (r *postgresArrivalRepository) Get(ctx context.Context, personID int) (*models.ArrivalRecord, error) {
	return r.getOne(ctx, `SELECT person_id, state, updated_at FROM arrivals WHERE person_id = $1`, personID)
}

func (r *postgresArrivalRepository) GetForUpdate(ctx context.Context, personID int) (*models.ArrivalRecord, error) {
	return r.getOne(ctx, `SELECT person_id, state, updated_at FROM arrivals WHERE person_id = $1 FOR UPDATE`, personID)
}

func (r *postgresArrivalRepository) getOne(ctx context.Context, query string, personID int) (*models.ArrivalRecord, error) {
	rec := &models.ArrivalRecord{}
	err := r.exec.QueryRowContext(ctx, query, personID).Scan(&rec.PersonID, &rec.State, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArrivalNotFound
		}
		return nil, fmt.Errorf("failed to get arrival record for person %d: %w", personID, err)
	}
	return rec, nil
}

func (r *postgresArrivalRepository) List(ctx context.Context) ([]models.ArrivalRecord, error) {
	rows, err := r.exec.QueryContext(ctx, `SELECT person_id, state, updated_at FROM arrivals ORDER BY person_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list arrival records: %w", err)
	}
	defer rows.Close()

	records := make([]models.ArrivalRecord, 0)
	for rows.Next() {
		var rec models.ArrivalRecord
		if err := rows.Scan(&rec.PersonID, &rec.State, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan arrival record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *postgresArrivalRepository) UpdateState(ctx context.Context, personID int, state models.ArrivalState, at time.Time) error {
	result, err := r.exec.ExecContext(ctx, `UPDATE arrivals SET state = $1, updated_at = $2 WHERE person_id = $3`, state, at, personID)
	if err != nil {
		return fmt.Errorf("failed to update arrival state for person %d: %w", personID, err)
	}
	return checkAffectedRows(result, ErrArrivalNotFound)
}
