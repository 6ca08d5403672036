package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/hackathon-ops/models"
)

type postgresPersonRepository struct {
	exec SQLExecutor
}

func (r *postgresPersonRepository) Create(ctx context.Context, person *models.Person) error {
	query := `
		INSERT INTO people (name, email, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.exec.QueryRowContext(ctx, query,
		person.Name,
		person.Email,
		person.Role,
		person.PasswordHash,
	).Scan(&person.ID, &person.CreatedAt)
	if err != nil {
		if mapped := translatePQError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to create person: %w", err)
	}
	return nil
}

func (r *postgresPersonRepository) GetByID(ctx context.Context, id int) (*models.Person, error) {
	query := `SELECT id, name, email, role, password_hash, created_at FROM people WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *postgresPersonRepository) GetByEmail(ctx context.Context, email string) (*models.Person, error) {
	query := `SELECT id, name, email, role, password_hash, created_at FROM people WHERE lower(email) = lower($1)`
	return r.scanOne(ctx, query, email)
}

func (r *postgresPersonRepository) List(ctx context.Context) ([]models.Person, error) {
	query := `SELECT id, name, email, role, password_hash, created_at FROM people ORDER BY id ASC`
	rows, err := r.exec.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	defer rows.Close()

	people := make([]models.Person, 0)
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.PasswordHash, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (r *postgresPersonRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*models.Person, error) {
	p := &models.Person{}
	err := r.exec.QueryRowContext(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Role,
		&p.PasswordHash,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("failed to get person: %w", err)
	}
	return p, nil
}
