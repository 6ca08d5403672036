package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/repositories"
)

// mapRepositoryError translates repository sentinels into service error kinds.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrPersonNotFound):
		return ErrPersonNotFound
	case errors.Is(err, repositories.ErrJudgeNotFound),
		errors.Is(err, repositories.ErrTeamJudgeInvalid):
		return ErrJudgeNotFound
	case errors.Is(err, repositories.ErrMembershipNotFound):
		return ErrNotTeamMember
	case errors.Is(err, repositories.ErrMemberConflict):
		return ErrAlreadyOnTeam
	case errors.Is(err, repositories.ErrArrivalNotFound):
		return ErrArrivalNotFound
	case errors.Is(err, repositories.ErrArrivalConflict):
		return ErrArrivalExists
	case errors.Is(err, repositories.ErrPersonEmailConflict):
		return ErrPersonEmailTaken
	case errors.Is(err, repositories.ErrJudgeEmailConflict):
		return ErrJudgeEmailTaken
	case errors.Is(err, repositories.ErrLeaderNotMember),
		errors.Is(err, repositories.ErrReadOnly):
		return fmt.Errorf("%w: %v", ErrContractViolation, err)
	}
	return err
}

// snapshot is a consistent read of everything the read-side projections join.
type snapshot struct {
	people       []models.Person
	peopleByID   map[int]models.Person
	judgesByID   map[int]models.Judge
	teams        []models.Team
	teamOfPerson map[int]*models.Team
	arrivals     []models.ArrivalRecord
	stateOf      map[int]models.ArrivalState
}

func loadSnapshot(ctx context.Context, tx repositories.Tx) (*snapshot, error) {
	people, err := tx.People().List(ctx)
	if err != nil {
		return nil, err
	}
	judges, err := tx.Judges().List(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := tx.Teams().List(ctx)
	if err != nil {
		return nil, err
	}
	arrivals, err := tx.Arrivals().List(ctx)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{
		people:       people,
		peopleByID:   make(map[int]models.Person, len(people)),
		judgesByID:   make(map[int]models.Judge, len(judges)),
		teams:        teams,
		teamOfPerson: make(map[int]*models.Team),
		arrivals:     arrivals,
		stateOf:      make(map[int]models.ArrivalState, len(arrivals)),
	}
	for _, p := range people {
		snap.peopleByID[p.ID] = p
	}
	for _, j := range judges {
		snap.judgesByID[j.ID] = j
	}
	for i := range snap.teams {
		for _, id := range snap.teams[i].MemberIDs {
			snap.teamOfPerson[id] = &snap.teams[i]
		}
	}
	for _, a := range arrivals {
		snap.stateOf[a.PersonID] = a.State
	}
	return snap, nil
}

// availablePeople is derived from membership on every call.
func (s *snapshot) availablePeople(viewerID int, q string) []models.Person {
	pool := make([]models.Person, 0)
	for _, p := range s.people {
		if p.ID == viewerID {
			continue
		}
		if _, onTeam := s.teamOfPerson[p.ID]; onTeam {
			continue
		}
		if p.Matches(q) {
			pool = append(pool, p)
		}
	}
	return pool
}

func (s *snapshot) hydrate(team *models.Team) {
	team.Members = OrderedMembers(team, s.peopleByID)
	team.Judge = nil
	if team.JudgeID != nil {
		if j, ok := s.judgesByID[*team.JudgeID]; ok {
			team.Judge = &j
		}
	}
	team.Status = DeriveTeamStatus(team, s.stateOf)
}

func nowUTC(now func() time.Time) time.Time {
	return now().UTC()
}

func (s *snapshot) arrivalView(rec models.ArrivalRecord) models.ArrivalView {
	p := s.peopleByID[rec.PersonID]
	v := models.ArrivalView{
		PersonID:  rec.PersonID,
		Name:      p.DisplayName(),
		Email:     p.Email,
		State:     rec.State,
		UpdatedAt: rec.UpdatedAt,
	}
	if team, ok := s.teamOfPerson[rec.PersonID]; ok {
		id := team.ID
		v.TeamID = &id
		v.TeamName = team.Name
		v.Track = team.Track
	}
	return v
}
