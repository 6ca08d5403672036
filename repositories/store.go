package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Dosada05/hackathon-ops/models"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrPersonNotFound      = errors.New("person not found")
	ErrPersonEmailConflict = errors.New("person email conflict")
	ErrJudgeNotFound       = errors.New("judge not found")
	ErrJudgeEmailConflict  = errors.New("judge email conflict")
	ErrTeamNotFound        = errors.New("team not found")
	ErrMembershipNotFound  = errors.New("team membership not found")
	ErrMemberConflict      = errors.New("person already belongs to a team")
	ErrLeaderNotMember     = errors.New("team leader must be a team member")
	ErrTeamJudgeInvalid    = errors.New("team judge conflict or invalid")
	ErrArrivalNotFound     = errors.New("arrival record not found")
	ErrArrivalConflict     = errors.New("arrival record already exists")
	ErrReadOnly            = errors.New("write attempted in a read-only transaction")
)

type PersonRepository interface {
	Create(ctx context.Context, person *models.Person) error
	GetByID(ctx context.Context, id int) (*models.Person, error)
	GetByEmail(ctx context.Context, email string) (*models.Person, error)
	List(ctx context.Context) ([]models.Person, error)
}

type JudgeRepository interface {
	Create(ctx context.Context, judge *models.Judge) error
	GetByID(ctx context.Context, id int) (*models.Judge, error)
	List(ctx context.Context) ([]models.Judge, error)
	Delete(ctx context.Context, id int) error
}

// TeamRepository owns teams and their membership edges. Membership rows are
// unique per person, so a person can never be attached to two teams.
type TeamRepository interface {
	// Create inserts the team and its leader as the first member.
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	// Lock is GetByID plus a row lock held until the transaction ends.
	Lock(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	TeamIDForPerson(ctx context.Context, personID int) (int, error)
	AddMember(ctx context.Context, teamID, personID int) error
	RemoveMember(ctx context.Context, teamID, personID int) error
	Delete(ctx context.Context, id int) error
	SetJudge(ctx context.Context, teamID int, judgeID *int) error
	// ClearJudge unassigns the judge everywhere and returns the affected team ids.
	ClearJudge(ctx context.Context, judgeID int) ([]int, error)
	SetProject(ctx context.Context, teamID int, project models.Project) error
	SetLeader(ctx context.Context, teamID, leaderID int) error
}

type ArrivalRepository interface {
	Create(ctx context.Context, record *models.ArrivalRecord) error
	Get(ctx context.Context, personID int) (*models.ArrivalRecord, error)
	GetForUpdate(ctx context.Context, personID int) (*models.ArrivalRecord, error)
	// List returns records in registration order.
	List(ctx context.Context) ([]models.ArrivalRecord, error)
	UpdateState(ctx context.Context, personID int, state models.ArrivalState, at time.Time) error
}

type Tx interface {
	People() PersonRepository
	Judges() JudgeRepository
	Teams() TeamRepository
	Arrivals() ArrivalRepository
}

// Store is the persistence collaborator. InTx commits only when fn returns nil;
// View runs fn against a consistent read-only snapshot.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}
