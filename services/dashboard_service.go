package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/hackathon-ops/models"
	"golang.org/x/sync/errgroup"
)

type DashboardService interface {
	Overview(ctx context.Context) (*models.DashboardOverview, error)
}

type dashboardService struct {
	roster    RosterService
	arrivals  ArrivalService
	directory DirectoryService
}

func NewDashboardService(roster RosterService, arrivals ArrivalService, directory DirectoryService) DashboardService {
	return &dashboardService{
		roster:    roster,
		arrivals:  arrivals,
		directory: directory,
	}
}

// Overview loads each counter in its own read so the board never blocks on one slow query.
func (s *dashboardService) Overview(ctx context.Context) (*models.DashboardOverview, error) {
	overview := &models.DashboardOverview{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.roster.ListTeams(gCtx, models.TeamFilter{})
		if err != nil {
			return fmt.Errorf("failed to load teams: %w", err)
		}
		overview.TeamsTotal = len(teams)
		for _, t := range teams {
			if t.JudgeID == nil {
				overview.UnjudgedTeams++
			}
			if t.Status == models.TeamStatusIncomplete {
				overview.IncompleteTeams++
			}
		}
		return nil
	})

	g.Go(func() error {
		people, err := s.directory.ListPeople(gCtx, "")
		if err != nil {
			return fmt.Errorf("failed to load people: %w", err)
		}
		overview.PeopleTotal = len(people)
		return nil
	})

	g.Go(func() error {
		pool, err := s.roster.AvailablePool(gCtx, 0, "")
		if err != nil {
			return fmt.Errorf("failed to load available pool: %w", err)
		}
		overview.AvailableTotal = len(pool)
		return nil
	})

	g.Go(func() error {
		judges, err := s.directory.ListJudges(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load judges: %w", err)
		}
		overview.JudgesTotal = len(judges)
		return nil
	})

	g.Go(func() error {
		stats, err := s.arrivals.Stats(gCtx)
		if err != nil {
			return fmt.Errorf("failed to load arrival stats: %w", err)
		}
		overview.Arrivals = *stats
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}
