package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/repositories"
	"github.com/Dosada05/hackathon-ops/utils"
)

const MinPasswordLength = 8

type RegisterPersonInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"-"`
}

type CreateJudgeInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DirectoryService owns people and judges. Every registered person gets an
// arrival record in the same transaction.
type DirectoryService interface {
	RegisterPerson(ctx context.Context, input RegisterPersonInput) (*models.Person, error)
	GetPerson(ctx context.Context, id int) (*models.Person, error)
	ListPeople(ctx context.Context, query string) ([]models.Person, error)

	CreateJudge(ctx context.Context, input CreateJudgeInput) (*models.Judge, error)
	ListJudges(ctx context.Context) ([]models.Judge, error)
	DeleteJudge(ctx context.Context, id int) error
}

type directoryService struct {
	store     repositories.Store
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewDirectoryService(store repositories.Store, publisher EventPublisher, logger *slog.Logger) DirectoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &directoryService{
		store:     store,
		publisher: publisherOrNoop(publisher),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *directoryService) RegisterPerson(ctx context.Context, input RegisterPersonInput) (*models.Person, error) {
	name := strings.TrimSpace(input.Name)
	email := utils.NormalizeEmail(input.Email)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	role := input.Role
	if role == "" {
		role = models.RoleParticipant
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	person := &models.Person{Name: name, Email: email, Role: role, PasswordHash: hash}
	err = s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if err := tx.People().Create(ctx, person); err != nil {
			return err
		}
		return tx.Arrivals().Create(ctx, &models.ArrivalRecord{
			PersonID:  person.ID,
			State:     models.ArrivalNotArrived,
			UpdatedAt: nowUTC(s.now),
		})
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.Info("person registered", slog.Int("person_id", person.ID), slog.String("role", string(person.Role)))
	return person, nil
}

func (s *directoryService) GetPerson(ctx context.Context, id int) (*models.Person, error) {
	if err := requireID("person id", id); err != nil {
		return nil, err
	}
	var person *models.Person
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		person, err = tx.People().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return person, nil
}

func (s *directoryService) ListPeople(ctx context.Context, query string) ([]models.Person, error) {
	q := models.NormalizeQuery(query)
	var people []models.Person
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		all, err := tx.People().List(ctx)
		if err != nil {
			return err
		}
		people = make([]models.Person, 0, len(all))
		for _, p := range all {
			if p.Matches(q) {
				people = append(people, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return people, nil
}

func (s *directoryService) CreateJudge(ctx context.Context, input CreateJudgeInput) (*models.Judge, error) {
	name := strings.TrimSpace(input.Name)
	email := utils.NormalizeEmail(input.Email)
	if name == "" {
		return nil, ErrNameRequired
	}
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	judge := &models.Judge{Name: name, Email: email}
	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		return tx.Judges().Create(ctx, judge)
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.Info("judge created", slog.Int("judge_id", judge.ID))
	return judge, nil
}

func (s *directoryService) ListJudges(ctx context.Context) ([]models.Judge, error) {
	var judges []models.Judge
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		var err error
		judges, err = tx.Judges().List(ctx)
		return err
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return judges, nil
}

// DeleteJudge unassigns the judge from every team before removing it.
func (s *directoryService) DeleteJudge(ctx context.Context, id int) error {
	if err := requireID("judge id", id); err != nil {
		return err
	}

	var cleared []int
	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		if _, err := tx.Judges().GetByID(ctx, id); err != nil {
			return err
		}
		var err error
		if cleared, err = tx.Teams().ClearJudge(ctx, id); err != nil {
			return err
		}
		return tx.Judges().Delete(ctx, id)
	})
	if err != nil {
		return mapRepositoryError(err)
	}

	s.logger.Info("judge deleted", slog.Int("judge_id", id), slog.Int("teams_unassigned", len(cleared)))
	s.publisher.Publish(newEvent(models.RoomTeams, models.EventJudgeDeleted,
		judgeEvent{JudgeID: id, UnassignedFrom: cleared}, nowUTC(s.now)))
	return nil
}
