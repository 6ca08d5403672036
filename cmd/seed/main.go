// Command seed loads the demo roster: people with legacy arrival labels, judges and three teams.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Dosada05/hackathon-ops/config"
	"github.com/Dosada05/hackathon-ops/db"
	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/repositories"
	"github.com/Dosada05/hackathon-ops/services"
)

const demoPassword = "password"

type seedPerson struct {
	Name  string
	Email string
	Role  models.Role
	State string // "Pending", "Arrived", "Checked In"
}

type seedTeam struct {
	Name    string
	Track   string
	Members []string // e-mails, leader first
	Judge   string   // judge e-mail, optional
}

var (
	people = []seedPerson{
		{"Event Admin", "admin@demo.com", models.RoleAdmin, "Checked In"},
		{"Ava Nguyen", "ava.nguyen@unlv.edu", models.RoleParticipant, "Pending"},
		{"Liam Chen", "liam.chen@unlv.edu", models.RoleParticipant, "Arrived"},
		{"Priya Shah", "priya.shah@unlv.edu", models.RoleParticipant, "Pending"},
		{"Mateo Rivera", "mateo.rivera@unlv.edu", models.RoleParticipant, "Checked In"},
		{"Maria Gonzalez", "maria.gonzalez@csn.edu", models.RoleParticipant, "Checked In"},
		{"Sofia Patel", "sofia.patel@unlv.edu", models.RoleParticipant, "Pending"},
	}

	judges = []services.CreateJudgeInput{
		{Name: "Jamie Park", Email: "jamie.park@unlv.edu"},
		{Name: "Riley Gomez", Email: "riley.gomez@unlv.edu"},
		{Name: "Morgan Brooks", Email: "morgan.brooks@csn.edu"},
	}

	teams = []seedTeam{
		{"Neon Ninjas", "Software", []string{"ava.nguyen@unlv.edu", "liam.chen@unlv.edu", "priya.shah@unlv.edu"}, "jamie.park@unlv.edu"},
		{"Circuit Cowboys", "Hardware", []string{"mateo.rivera@unlv.edu", "maria.gonzalez@csn.edu"}, ""},
		{"Desert Debuggers", "Software", []string{"sofia.patel@unlv.edu"}, "riley.gomez@unlv.edu"},
	}
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.StoreDriver != config.StoreDriverPostgres {
		logger.Error("seeding requires STORE_DRIVER=postgres")
		os.Exit(1)
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbConn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to apply schema", slog.Any("error", err))
		os.Exit(1)
	}

	store := repositories.NewPostgresStore(dbConn)
	if err := seed(ctx, store, cfg, logger); err != nil {
		logger.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("seed complete")
}

func seed(ctx context.Context, store repositories.Store, cfg *config.Config, logger *slog.Logger) error {
	directory := services.NewDirectoryService(store, nil, logger)
	roster := services.NewRosterService(store, cfg.TeamLimit, nil, logger)
	arrivals := services.NewArrivalService(store, cfg.ArrivalMode, nil, logger)

	existing, err := directory.ListPeople(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("database already has people, skipping seed", slog.Int("people", len(existing)))
		return nil
	}

	personIDs := make(map[string]int, len(people))
	for _, p := range people {
		created, err := directory.RegisterPerson(ctx, services.RegisterPersonInput{
			Name: p.Name, Email: p.Email, Password: demoPassword, Role: p.Role,
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", p.Email, err)
		}
		personIDs[p.Email] = created.ID

		state, err := models.ParseArrivalState(p.State)
		if err != nil {
			return fmt.Errorf("person %s: %w", p.Email, err)
		}
		if err := advanceTo(ctx, arrivals, created.ID, state); err != nil {
			return fmt.Errorf("arrival state for %s: %w", p.Email, err)
		}
	}

	judgeIDs := make(map[string]int, len(judges))
	for _, j := range judges {
		created, err := directory.CreateJudge(ctx, j)
		if err != nil {
			return fmt.Errorf("create judge %s: %w", j.Email, err)
		}
		judgeIDs[j.Email] = created.ID
	}

	for _, t := range teams {
		team, err := roster.CreateTeam(ctx, services.CreateTeamInput{Name: t.Name, Track: t.Track, FounderID: personIDs[t.Members[0]]})
		if err != nil {
			return fmt.Errorf("create team %s: %w", t.Name, err)
		}
		for _, email := range t.Members[1:] {
			if err := roster.AddMember(ctx, team.ID, personIDs[email]); err != nil {
				return fmt.Errorf("add %s to %s: %w", email, t.Name, err)
			}
		}
		if t.Judge != "" {
			judgeID := judgeIDs[t.Judge]
			if err := roster.SetJudge(ctx, team.ID, &judgeID); err != nil {
				return fmt.Errorf("assign judge to %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

// advanceTo walks a NotArrived record forward through legal transitions only.
func advanceTo(ctx context.Context, arrivals services.ArrivalService, personID int, target models.ArrivalState) error {
	switch target {
	case models.ArrivalNotArrived:
		return nil
	case models.ArrivalArrived:
		if arrivals.Mode() == models.ArrivalModeTwoState {
			return nil
		}
		_, err := arrivals.MarkArrived(ctx, personID)
		return err
	case models.ArrivalCheckedIn:
		if arrivals.Mode() == models.ArrivalModeThreeState {
			if _, err := arrivals.MarkArrived(ctx, personID); err != nil {
				return err
			}
		}
		_, err := arrivals.CheckIn(ctx, personID)
		return err
	}
	return fmt.Errorf("unsupported target state %q", target)
}
