package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

type postgresTx struct {
	exec SQLExecutor
}

func (t *postgresTx) People() PersonRepository    { return &postgresPersonRepository{exec: t.exec} }
func (t *postgresTx) Judges() JudgeRepository     { return &postgresJudgeRepository{exec: t.exec} }
func (t *postgresTx) Teams() TeamRepository       { return &postgresTeamRepository{exec: t.exec} }
func (t *postgresTx) Arrivals() ArrivalRepository { return &postgresArrivalRepository{exec: t.exec} }

func (s *postgresStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

func (s *postgresStore) View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (s *postgresStore) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else if commitErr := tx.Commit(); commitErr != nil {
			// Deferred constraints are checked at commit.
			err = translatePQError(commitErr)
		}
	}()

	err = fn(ctx, &postgresTx{exec: tx})
	return err
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}
