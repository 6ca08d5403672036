package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/repositories"
)

const DefaultTeamLimit = 5

type CreateTeamInput struct {
	Name      string `json:"name"`
	Track     string `json:"track"`
	FounderID int    `json:"-"`
}

// RosterService is the single source of truth for who is on what team.
type RosterService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	AddMember(ctx context.Context, teamID, personID int) error
	RemoveMember(ctx context.Context, teamID, personID int) error
	LeaveTeam(ctx context.Context, teamID, personID int) error
	DisbandTeam(ctx context.Context, teamID int) error
	SetJudge(ctx context.Context, teamID int, judgeID *int) error
	SetProject(ctx context.Context, teamID int, project models.Project, callerIsLeader bool) error
	TransferLeadership(ctx context.Context, teamID, newLeaderID int) error

	GetTeam(ctx context.Context, teamID int) (*models.Team, error)
	ListTeams(ctx context.Context, filter models.TeamFilter) ([]models.Team, error)
	TeamOf(ctx context.Context, personID int) (*models.Team, error)
	// AvailablePool lists people on no team. viewerID, when positive, is left out.
	AvailablePool(ctx context.Context, viewerID int, query string) ([]models.Person, error)
	Limit() int
}

type rosterService struct {
	store     repositories.Store
	limit     int
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewRosterService(store repositories.Store, teamLimit int, publisher EventPublisher, logger *slog.Logger) RosterService {
	if teamLimit < 1 {
		teamLimit = DefaultTeamLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &rosterService{
		store:     store,
		limit:     teamLimit,
		publisher: publisherOrNoop(publisher),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *rosterService) Limit() int {
	return s.limit
}

func (s *rosterService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if err := requireID("founder id", input.FounderID); err != nil {
		return nil, err
	}
	track := models.TrackSoftware
	if strings.TrimSpace(input.Track) != "" {
		parsed, ok := models.ParseTrack(input.Track)
		if !ok {
			return nil, ErrUnknownTrack
		}
		track = parsed
	}

	team := &models.Team{Name: name, Track: track, LeaderID: input.FounderID}
	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.People().GetByID(ctx, input.FounderID); err != nil {
			return err
		}
		if err := ensureUnassigned(ctx, tx, input.FounderID); err != nil {
			return err
		}
		return tx.Teams().Create(ctx, team)
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.Info("team created", slog.Int("team_id", team.ID), slog.Int("leader_id", team.LeaderID), slog.String("track", string(team.Track)))
	s.publish(models.EventTeamCreated, teamEvent{TeamID: team.ID, LeaderID: team.LeaderID, Name: team.Name})
	return team, nil
}

func (s *rosterService) AddMember(ctx context.Context, teamID, personID int) error {
	if err := requireID("team id", teamID); err != nil {
		return err
	}
	if err := requireID("person id", personID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		team, err := tx.Teams().Lock(ctx, teamID)
		if err != nil {
			return err
		}
		if _, err := tx.People().GetByID(ctx, personID); err != nil {
			return err
		}
		if team.Size() >= s.limit {
			return ErrCapacityExceeded
		}
		if err := ensureUnassigned(ctx, tx, personID); err != nil {
			return err
		}
		// The unique membership index still rejects a concurrent add to another team.
		return tx.Teams().AddMember(ctx, teamID, personID)
	})
	if err != nil {
		return mapRepositoryError(err)
	}

	s.logger.Info("team member added", slog.Int("team_id", teamID), slog.Int("person_id", personID))
	s.publish(models.EventTeamMemberAdded, teamEvent{TeamID: teamID, PersonID: personID})
	return nil
}

func (s *rosterService) RemoveMember(ctx context.Context, teamID, personID int) error {
	return s.detach(ctx, teamID, personID, models.EventTeamMemberRemoved)
}

// LeaveTeam is self-removal. Leaders disband instead.
func (s *rosterService) LeaveTeam(ctx context.Context, teamID, personID int) error {
	return s.detach(ctx, teamID, personID, models.EventTeamMemberLeft)
}

func (s *rosterService) detach(ctx context.Context, teamID, personID int, eventType string) error {
	if err := requireID("team id", teamID); err != nil {
		return err
	}
	if err := requireID("person id", personID); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		team, err := tx.Teams().Lock(ctx, teamID)
		if err != nil {
			return err
		}
		if !team.HasMember(personID) {
			return ErrNotTeamMember
		}
		if team.IsLeader(personID) {
			return ErrCannotRemoveLeader
		}
		return tx.Teams().RemoveMember(ctx, teamID, personID)
	})
	if err != nil {
		return mapRepositoryError(err)
	}

	s.logger.Info("team member detached", slog.Int("team_id", teamID), slog.Int("person_id", personID), slog.String("event", eventType))
	s.publish(eventType, teamEvent{TeamID: teamID, PersonID: personID})
	return nil
}

func (s *rosterService) DisbandTeam(ctx context.Context, teamID int) error {
	if err := requireID("team id", teamID); err != nil {
		return err
	}

	var freed []int
	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		team, err := tx.Teams().Lock(ctx, teamID)
		if err != nil {
			return err
		}
		freed = team.MemberIDs
		return tx.Teams().Delete(ctx, teamID)
	})
	if err != nil {
		return mapRepositoryError(err)
	}

	s.logger.Info("team disbanded", slog.Int("team_id", teamID), slog.Int("freed_members", len(freed)))
	s.publish(models.EventTeamDisbanded, teamEvent{TeamID: teamID, MemberIDs: freed})
	return nil
}

// SetJudge assigns a judge, or clears the assignment when judgeID is nil.
func (s *rosterService) SetJudge(ctx context.Context, teamID int, judgeID *int) error {
	if err := requireID("team id", teamID); err != nil {
		return err
	}
	if judgeID != nil {
		if err := requireID("judge id", *judgeID); err != nil {
			return err
		}
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Teams().Lock(ctx, teamID); err != nil {
			return err
		}
		if judgeID != nil {
			if _, err := tx.Judges().GetByID(ctx, *judgeID); err != nil {
				return err
			}
		}
		return tx.Teams().SetJudge(ctx, teamID, judgeID)
	})
	if err != nil {
		return mapRepositoryError(err)
	}

	s.logger.Info("team judge set", slog.Int("team_id", teamID), slog.Any("judge_id", judgeID))
	s.publish(models.EventTeamJudgeSet, teamEvent{TeamID: teamID, JudgeID: judgeID})
	return nil
}

func (s *rosterService) SetProject(ctx context.Context, teamID int, project models.Project, callerIsLeader bool) error {
	if err := requireID("team id", teamID); err != nil {
		return err
	}
	if !callerIsLeader {
		return ErrLeaderOnlyAction
	}
	project = models.Project{
		Name:    strings.TrimSpace(project.Name),
		Details: strings.TrimSpace(project.Details),
	}

	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Teams().Lock(ctx, teamID); err != nil {
			return err
		}
		return tx.Teams().SetProject(ctx, teamID, project)
	})
	if err != nil {
		return mapRepositoryError(err)
	}

	s.logger.Info("team project set", slog.Int("team_id", teamID))
	s.publish(models.EventTeamProjectSet, teamEvent{TeamID: teamID, Name: project.Name})
	return nil
}

func (s *rosterService) TransferLeadership(ctx context.Context, teamID, newLeaderID int) error {
	if err := requireID("team id", teamID); err != nil {
		return err
	}
	if err := requireID("new leader id", newLeaderID); err != nil {
		return err
	}

	changed := false
	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		team, err := tx.Teams().Lock(ctx, teamID)
		if err != nil {
			return err
		}
		if !team.HasMember(newLeaderID) {
			return ErrNotTeamMember
		}
		if team.IsLeader(newLeaderID) {
			return nil
		}
		changed = true
		return tx.Teams().SetLeader(ctx, teamID, newLeaderID)
	})
	if err != nil {
		return mapRepositoryError(err)
	}
	if !changed {
		return nil
	}

	s.logger.Info("team leader changed", slog.Int("team_id", teamID), slog.Int("leader_id", newLeaderID))
	s.publish(models.EventTeamLeaderChanged, teamEvent{TeamID: teamID, LeaderID: newLeaderID})
	return nil
}

func (s *rosterService) GetTeam(ctx context.Context, teamID int) (*models.Team, error) {
	if err := requireID("team id", teamID); err != nil {
		return nil, err
	}

	var team *models.Team
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		snap, err := loadSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		for i := range snap.teams {
			if snap.teams[i].ID == teamID {
				team = &snap.teams[i]
				snap.hydrate(team)
				return nil
			}
		}
		return ErrTeamNotFound
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return team, nil
}

func (s *rosterService) ListTeams(ctx context.Context, filter models.TeamFilter) ([]models.Team, error) {
	q := models.NormalizeQuery(filter.Query)

	var teams []models.Team
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		snap, err := loadSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		teams = make([]models.Team, 0, len(snap.teams))
		for i := range snap.teams {
			team := snap.teams[i]
			if filter.Track != nil && team.Track != *filter.Track {
				continue
			}
			snap.hydrate(&team)
			if teamMatches(&team, q) {
				teams = append(teams, team)
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return teams, nil
}

func (s *rosterService) TeamOf(ctx context.Context, personID int) (*models.Team, error) {
	if err := requireID("person id", personID); err != nil {
		return nil, err
	}

	var team *models.Team
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		snap, err := loadSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		if _, ok := snap.peopleByID[personID]; !ok {
			return ErrPersonNotFound
		}
		found, ok := snap.teamOfPerson[personID]
		if !ok {
			return ErrNoTeam
		}
		team = found
		snap.hydrate(team)
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return team, nil
}

func (s *rosterService) AvailablePool(ctx context.Context, viewerID int, query string) ([]models.Person, error) {
	var pool []models.Person
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		snap, err := loadSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		pool = snap.availablePeople(viewerID, models.NormalizeQuery(query))
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return pool, nil
}

func (s *rosterService) publish(eventType string, payload teamEvent) {
	s.publisher.Publish(newEvent(models.RoomTeams, eventType, payload, nowUTC(s.now)))
}

func ensureUnassigned(ctx context.Context, tx repositories.Tx, personID int) error {
	_, err := tx.Teams().TeamIDForPerson(ctx, personID)
	switch {
	case err == nil:
		return ErrAlreadyOnTeam
	case errors.Is(err, repositories.ErrMembershipNotFound):
		return nil
	}
	return err
}

// OrderedMembers lists the leader first, then everyone else in join order.
func OrderedMembers(team *models.Team, people map[int]models.Person) []models.Person {
	members := make([]models.Person, 0, len(team.MemberIDs))
	if leader, ok := people[team.LeaderID]; ok && team.HasMember(team.LeaderID) {
		members = append(members, leader)
	}
	for _, id := range team.MemberIDs {
		if id == team.LeaderID {
			continue
		}
		if p, ok := people[id]; ok {
			members = append(members, p)
		}
	}
	return members
}

// DeriveTeamStatus computes the board status from size and member arrivals.
func DeriveTeamStatus(team *models.Team, arrivals map[int]models.ArrivalState) models.TeamStatus {
	if team.Size() < models.MinReadyTeamSize {
		return models.TeamStatusIncomplete
	}
	for _, id := range team.MemberIDs {
		if arrivals[id] != models.ArrivalCheckedIn {
			return models.TeamStatusReady
		}
	}
	return models.TeamStatusCheckedIn
}

func teamMatches(team *models.Team, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(team.Name), q) {
		return true
	}
	for _, m := range team.Members {
		if m.Matches(q) {
			return true
		}
	}
	return team.Judge != nil && team.Judge.Matches(q)
}
