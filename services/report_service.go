package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/storage"
	"golang.org/x/sync/errgroup"
)

const reportContentType = "text/csv; charset=utf-8"

type ReportService interface {
	ExportArrivals(ctx context.Context, filter models.ArrivalFilter) (*storage.UploadResult, error)
	ExportRoster(ctx context.Context, filter models.TeamFilter) (*storage.UploadResult, error)
}

type reportService struct {
	roster   RosterService
	arrivals ArrivalService
	uploader storage.FileUploader
	logger   *slog.Logger
	now      func() time.Time
}

// NewReportService accepts a nil uploader; exports then fail with ErrReportsDisabled.
func NewReportService(roster RosterService, arrivals ArrivalService, uploader storage.FileUploader, logger *slog.Logger) ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &reportService{
		roster:   roster,
		arrivals: arrivals,
		uploader: uploader,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *reportService) ExportArrivals(ctx context.Context, filter models.ArrivalFilter) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrReportsDisabled
	}
	views, err := s.arrivals.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := [][]string{{"person_id", "name", "email", "team", "track", "state", "updated_at"}}
	for _, v := range views {
		rows = append(rows, []string{
			strconv.Itoa(v.PersonID),
			v.Name,
			v.Email,
			v.TeamName,
			string(v.Track),
			string(v.State),
			v.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return s.upload(ctx, "arrivals", rows)
}

func (s *reportService) ExportRoster(ctx context.Context, filter models.TeamFilter) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrReportsDisabled
	}

	var teams []models.Team
	var views []models.ArrivalView
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.roster.ListTeams(gCtx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		views, err = s.arrivals.List(gCtx, models.ArrivalFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	state := make(map[int]models.ArrivalState, len(views))
	for _, v := range views {
		state[v.PersonID] = v.State
	}

	rows := [][]string{{"team_id", "team", "track", "status", "leader", "members", "checked_in", "judge", "project", "project_details"}}
	for _, t := range teams {
		names := make([]string, 0, len(t.Members))
		checkedIn := 0
		for _, m := range t.Members {
			names = append(names, m.DisplayName())
			if state[m.ID] == models.ArrivalCheckedIn {
				checkedIn++
			}
		}
		leader := ""
		if len(t.Members) > 0 {
			leader = t.Members[0].DisplayName()
		}
		judge := "Unassigned"
		if t.Judge != nil {
			judge = t.Judge.Name
		} else if t.JudgeID != nil {
			judge = "Unknown Judge"
		}
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.Name,
			string(t.Track),
			string(t.Status),
			leader,
			strings.Join(names, "; "),
			fmt.Sprintf("%d/%d", checkedIn, len(t.Members)),
			judge,
			t.Project.Name,
			t.Project.Details,
		})
	}
	return s.upload(ctx, "roster", rows)
}

func (s *reportService) upload(ctx context.Context, name string, rows [][]string) (*storage.UploadResult, error) {
	body, err := encodeCSV(rows)
	if err != nil {
		return nil, err
	}
	key := ReportKey(name, nowUTC(s.now))
	result, err := s.uploader.Upload(ctx, key, reportContentType, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s report: %w", name, err)
	}
	s.logger.Info("report exported", slog.String("report", name), slog.String("key", key), slog.Int("rows", len(rows)-1))
	return result, nil
}

// ReportKey names an export object, e.g. reports/arrivals-20261014T093000Z.csv.
func ReportKey(name string, at time.Time) string {
	return fmt.Sprintf("reports/%s-%s.csv", name, at.UTC().Format("20060102T150405Z"))
}

func encodeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
