package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// constraintErrors maps constraint names from db/schema.sql to repository errors.
var constraintErrors = map[string]error{
	"people_email_key":              ErrPersonEmailConflict,
	"judges_email_key":              ErrJudgeEmailConflict,
	"team_members_person_id_key":    ErrMemberConflict,
	"team_members_team_person_key":  ErrMemberConflict,
	"teams_leader_membership_fkey":  ErrLeaderNotMember,
	"teams_judge_id_fkey":           ErrTeamJudgeInvalid,
	"team_members_person_id_fkey":   ErrPersonNotFound,
	"team_members_team_id_fkey":     ErrTeamNotFound,
	"arrivals_pkey":                 ErrArrivalConflict,
	"arrivals_person_id_fkey":       ErrPersonNotFound,
}

func translatePQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation, pqForeignKeyViolation:
		if mapped, ok := constraintErrors[pqErr.Constraint]; ok {
			return mapped
		}
	}
	return err
}
