package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service matches exactly one of them
// under errors.Is, or is an unexpected infrastructure failure.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("requested resource not found")
	ErrAlreadyOnTeam      = errors.New("person is already on a team")
	ErrCapacityExceeded   = errors.New("team is at capacity")
	ErrCannotRemoveLeader = errors.New("the team leader cannot be removed; disband the team or transfer leadership")
	ErrInvalidTransition  = errors.New("invalid arrival state transition")
	ErrForbidden          = errors.New("operation not allowed for the current user")
	ErrConflict           = errors.New("resource already exists")
	ErrUnavailable        = errors.New("feature is not configured")

	// ErrContractViolation marks malformed calls (non-positive ids and the like),
	// as opposed to requests that break a domain rule.
	ErrContractViolation = errors.New("contract violation")

	ErrAuthenticationFailed = errors.New("authentication failed")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func kindOf(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrTeamNotFound    = kindOf(ErrNotFound, "team not found")
	ErrPersonNotFound  = kindOf(ErrNotFound, "person not found")
	ErrJudgeNotFound   = kindOf(ErrNotFound, "judge not found")
	ErrArrivalNotFound = kindOf(ErrNotFound, "arrival record not found")
	ErrNotTeamMember   = kindOf(ErrNotFound, "person is not a member of this team")
	ErrNoTeam          = kindOf(ErrNotFound, "person is not on a team")

	ErrTeamNameRequired = kindOf(ErrInvalidInput, "team name is required")
	ErrUnknownTrack     = kindOf(ErrInvalidInput, "track must be Software or Hardware")
	ErrNameRequired     = kindOf(ErrInvalidInput, "name is required")
	ErrInvalidEmail     = kindOf(ErrInvalidInput, "a valid email address is required")
	ErrPasswordTooShort = kindOf(ErrInvalidInput, "password is too short")

	ErrLeaderOnlyAction = kindOf(ErrForbidden, "only the team leader can perform this action")

	ErrPersonEmailTaken = kindOf(ErrConflict, "email address is already in use")
	ErrJudgeEmailTaken  = kindOf(ErrConflict, "judge email address is already in use")
	ErrArrivalExists    = kindOf(ErrConflict, "arrival record already exists")

	ErrInvalidCredentials = kindOf(ErrAuthenticationFailed, "invalid email or password")
	ErrReportsDisabled    = kindOf(ErrUnavailable, "report export storage is not configured")
)

func requireID(name string, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrContractViolation, name, id)
	}
	return nil
}
