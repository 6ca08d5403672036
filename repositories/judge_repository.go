package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/hackathon-ops/models"
)

type postgresJudgeRepository struct {
	exec SQLExecutor
}

func (r *postgresJudgeRepository) Create(ctx context.Context, judge *models.Judge) error {
	query := `INSERT INTO judges (name, email) VALUES ($1, $2) RETURNING id, created_at`
	err := r.exec.QueryRowContext(ctx, query, judge.Name, judge.Email).Scan(&judge.ID, &judge.CreatedAt)
	if err != nil {
		if mapped := translatePQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create judge: %w", err)
	}
	return nil
}

func (r *postgresJudgeRepository) GetByID(ctx context.Context, id int) (*models.Judge, error) {
	query := `SELECT id, name, email, created_at FROM judges WHERE id = $1`
	j := &models.Judge{}
	err := r.exec.QueryRowContext(ctx, query, id).Scan(&j.ID, &j.Name, &j.Email, &j.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJudgeNotFound
		}
		return nil, fmt.Errorf("failed to get judge %d: %w", id, err)
	}
	return j, nil
}

func (r *postgresJudgeRepository) List(ctx context.Context) ([]models.Judge, error) {
	rows, err := r.exec.QueryContext(ctx, `SELECT id, name, email, created_at FROM judges ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list judges: %w", err)
	}
	defer rows.Close()

	judges := make([]models.Judge, 0)
	for rows.Next() {
		var j models.Judge
		if err := rows.Scan(&j.ID, &j.Name, &j.Email, &j.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan judge: %w", err)
		}
		judges = append(judges, j)
	}
	return judges, rows.Err()
}

func (r *postgresJudgeRepository) Delete(ctx context.Context, id int) error {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM judges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete judge %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrJudgeNotFound)
}
