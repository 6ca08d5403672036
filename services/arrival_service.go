package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/repositories"
)

// ArrivalService tracks each person's progress toward being checked in.
type ArrivalService interface {
	MarkArrived(ctx context.Context, personID int) (*models.ArrivalRecord, error)
	CheckIn(ctx context.Context, personID int) (*models.ArrivalRecord, error)
	UndoCheckIn(ctx context.Context, personID int) (*models.ArrivalRecord, error)
	UndoArrival(ctx context.Context, personID int) (*models.ArrivalRecord, error)

	Get(ctx context.Context, personID int) (*models.ArrivalView, error)
	List(ctx context.Context, filter models.ArrivalFilter) ([]models.ArrivalView, error)
	Stats(ctx context.Context) (*models.ArrivalStats, error)
	Mode() models.ArrivalMode
}

type arrivalAction string

const (
	actionMarkArrived arrivalAction = "mark_arrived"
	actionCheckIn     arrivalAction = "check_in"
	actionUndoCheckIn arrivalAction = "undo_check_in"
	actionUndoArrival arrivalAction = "undo_arrival"
)

type arrivalTransitions map[arrivalAction]map[models.ArrivalState]models.ArrivalState

var transitionsByMode = map[models.ArrivalMode]arrivalTransitions{
	models.ArrivalModeThreeState: {
		actionMarkArrived: {models.ArrivalNotArrived: models.ArrivalArrived},
		actionCheckIn:     {models.ArrivalArrived: models.ArrivalCheckedIn},
		actionUndoCheckIn: {models.ArrivalCheckedIn: models.ArrivalArrived},
		actionUndoArrival: {models.ArrivalArrived: models.ArrivalNotArrived},
	},
	// Pending is stored as NotArrived. Arrived only shows up in data migrated
	// from a three-state deployment and may still be checked in.
	models.ArrivalModeTwoState: {
		actionCheckIn: {
			models.ArrivalNotArrived: models.ArrivalCheckedIn,
			models.ArrivalArrived:    models.ArrivalCheckedIn,
		},
		actionUndoCheckIn: {models.ArrivalCheckedIn: models.ArrivalNotArrived},
	},
}

// nextArrivalState returns the target state, or false when the action is not
// allowed from current in this mode.
func nextArrivalState(mode models.ArrivalMode, action arrivalAction, current models.ArrivalState) (models.ArrivalState, bool) {
	next, ok := transitionsByMode[mode][action][current]
	return next, ok
}

type arrivalService struct {
	store     repositories.Store
	mode      models.ArrivalMode
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewArrivalService(store repositories.Store, mode models.ArrivalMode, publisher EventPublisher, logger *slog.Logger) ArrivalService {
	if _, ok := transitionsByMode[mode]; !ok {
		mode = models.ArrivalModeThreeState
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &arrivalService{
		store:     store,
		mode:      mode,
		publisher: publisherOrNoop(publisher),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *arrivalService) Mode() models.ArrivalMode {
	return s.mode
}

func (s *arrivalService) MarkArrived(ctx context.Context, personID int) (*models.ArrivalRecord, error) {
	return s.transition(ctx, personID, actionMarkArrived)
}

func (s *arrivalService) CheckIn(ctx context.Context, personID int) (*models.ArrivalRecord, error) {
	return s.transition(ctx, personID, actionCheckIn)
}

func (s *arrivalService) UndoCheckIn(ctx context.Context, personID int) (*models.ArrivalRecord, error) {
	return s.transition(ctx, personID, actionUndoCheckIn)
}

func (s *arrivalService) UndoArrival(ctx context.Context, personID int) (*models.ArrivalRecord, error) {
	return s.transition(ctx, personID, actionUndoArrival)
}

func (s *arrivalService) transition(ctx context.Context, personID int, action arrivalAction) (*models.ArrivalRecord, error) {
	if err := requireID("person id", personID); err != nil {
		return nil, err
	}

	var from models.ArrivalState
	var record *models.ArrivalRecord
	err := s.store.InTx(ctx, func(ctx context.Context, tx repositories.Tx) error {
		current, err := tx.Arrivals().GetForUpdate(ctx, personID)
		if err != nil {
			return err
		}
		next, ok := nextArrivalState(s.mode, action, current.State)
		if !ok {
			return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, strings.ReplaceAll(string(action), "_", " "), current.State)
		}
		at := nowUTC(s.now)
		if err := tx.Arrivals().UpdateState(ctx, personID, next, at); err != nil {
			return err
		}
		from = current.State
		record = &models.ArrivalRecord{PersonID: personID, State: next, UpdatedAt: at}
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.logger.Info("arrival state changed",
		slog.Int("person_id", personID),
		slog.String("from", string(from)),
		slog.String("state", string(record.State)))
	s.publisher.Publish(newEvent(models.RoomArrivals, models.EventArrivalChanged,
		arrivalEvent{PersonID: personID, From: from, To: record.State}, record.UpdatedAt))
	return record, nil
}

func (s *arrivalService) Get(ctx context.Context, personID int) (*models.ArrivalView, error) {
	if err := requireID("person id", personID); err != nil {
		return nil, err
	}

	var view *models.ArrivalView
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		snap, err := loadSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		for _, rec := range snap.arrivals {
			if rec.PersonID == personID {
				v := snap.arrivalView(rec)
				view = &v
				return nil
			}
		}
		return ErrArrivalNotFound
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return view, nil
}

// List keeps the registration order of the underlying records.
func (s *arrivalService) List(ctx context.Context, filter models.ArrivalFilter) ([]models.ArrivalView, error) {
	q := models.NormalizeQuery(filter.Query)

	var views []models.ArrivalView
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		snap, err := loadSnapshot(ctx, tx)
		if err != nil {
			return err
		}
		views = filterArrivals(snap, filter.State, q)
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return views, nil
}

func (s *arrivalService) Stats(ctx context.Context) (*models.ArrivalStats, error) {
	var stats models.ArrivalStats
	err := s.store.View(ctx, func(ctx context.Context, tx repositories.Tx) error {
		records, err := tx.Arrivals().List(ctx)
		if err != nil {
			return err
		}
		stats = CountArrivals(records)
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return &stats, nil
}

func filterArrivals(snap *snapshot, state models.ArrivalStateFilter, q string) []models.ArrivalView {
	views := make([]models.ArrivalView, 0, len(snap.arrivals))
	for _, rec := range snap.arrivals {
		if !state.Accepts(rec.State) {
			continue
		}
		v := snap.arrivalView(rec)
		if q == "" ||
			strings.Contains(strings.ToLower(v.Name), q) ||
			strings.Contains(strings.ToLower(v.Email), q) ||
			strings.Contains(strings.ToLower(v.TeamName), q) {
			views = append(views, v)
		}
	}
	return views
}

// CountArrivals derives the per-state counters. NeedsCheckIn equals Arrived.
func CountArrivals(records []models.ArrivalRecord) models.ArrivalStats {
	stats := models.ArrivalStats{TotalPeople: len(records)}
	for _, rec := range records {
		switch rec.State {
		case models.ArrivalNotArrived:
			stats.NotArrived++
		case models.ArrivalArrived:
			stats.Arrived++
		case models.ArrivalCheckedIn:
			stats.CheckedIn++
		}
	}
	stats.NeedsCheckIn = stats.Arrived
	return stats
}
