package services

import (
	"errors"
	"testing"

	"github.com/Dosada05/hackathon-ops/models"
)

func TestRegisterPersonValidation(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	f.person(t, "Ava Nguyen")

	tests := []struct {
		name  string
		input RegisterPersonInput
		want  error
	}{
		{"blank name", RegisterPersonInput{Name: " ", Email: "x@example.com", Password: "password123"}, ErrInvalidInput},
		{"bad email", RegisterPersonInput{Name: "X", Email: "not-an-email", Password: "password123"}, ErrInvalidInput},
		{"short password", RegisterPersonInput{Name: "X", Email: "x@example.com", Password: "short"}, ErrInvalidInput},
		{"duplicate email any case", RegisterPersonInput{Name: "Ava", Email: "AVA.NGUYEN@example.com", Password: "password123"}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.directory.RegisterPerson(f.ctx, tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("RegisterPerson error = %v, want %v", err, tt.want)
			}
		})
	}

	stats, _ := f.arrivals.Stats(f.ctx)
	if stats.TotalPeople != 1 {
		t.Fatalf("TotalPeople = %d, want failed registrations to leave no arrival records", stats.TotalPeople)
	}
}

func TestRegisterPersonDefaults(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p, err := f.directory.RegisterPerson(f.ctx, RegisterPersonInput{Name: "Mateo Rivera", Email: " Mateo@Example.com ", Password: "password123"})
	if err != nil {
		t.Fatalf("RegisterPerson: %v", err)
	}
	if p.Email != "mateo@example.com" || p.Role != models.RoleParticipant {
		t.Fatalf("person = %+v, want normalized email and participant role", p)
	}
	if p.PasswordHash == "" || p.PasswordHash == "password123" {
		t.Fatal("password was not hashed")
	}
}

func TestListPeopleQuery(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	ava := f.person(t, "Ava Nguyen")
	f.person(t, "Mateo Rivera")

	people, err := f.directory.ListPeople(f.ctx, "nguyen")
	if err != nil {
		t.Fatalf("ListPeople: %v", err)
	}
	if len(people) != 1 || people[0].ID != ava.ID {
		t.Fatalf("ListPeople = %+v, want Ava", people)
	}
	if _, err := f.directory.GetPerson(f.ctx, 404); !errors.Is(err, ErrPersonNotFound) {
		t.Fatalf("GetPerson unknown = %v, want %v", err, ErrPersonNotFound)
	}
}

func TestCreateJudgeDuplicateEmail(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	f.judge(t, "Jamie Park")

	_, err := f.directory.CreateJudge(f.ctx, CreateJudgeInput{Name: "Jamie P", Email: "JAMIE.PARK@judges.example.com"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("CreateJudge duplicate = %v, want %v", err, ErrConflict)
	}
	if _, err := f.directory.CreateJudge(f.ctx, CreateJudgeInput{Name: "", Email: "x@example.com"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("CreateJudge blank name = %v, want %v", err, ErrInvalidInput)
	}
}

func TestDeleteJudgeClearsAssignments(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 3)
	a := f.team(t, "Neon Ninjas", p[0])
	b := f.team(t, "Circuit Cowboys", p[1])
	c := f.team(t, "Desert Debuggers", p[2])
	jamie := f.judge(t, "Jamie Park")
	morgan := f.judge(t, "Morgan Brooks")
	f.roster.SetJudge(f.ctx, a.ID, &jamie.ID)
	f.roster.SetJudge(f.ctx, b.ID, &morgan.ID)
	f.roster.SetJudge(f.ctx, c.ID, &jamie.ID)

	if err := f.directory.DeleteJudge(f.ctx, jamie.ID); err != nil {
		t.Fatalf("DeleteJudge: %v", err)
	}

	for _, id := range []int{a.ID, c.ID} {
		team, _ := f.roster.GetTeam(f.ctx, id)
		if team.JudgeID != nil {
			t.Fatalf("team %d still references deleted judge %d", id, *team.JudgeID)
		}
	}
	team, _ := f.roster.GetTeam(f.ctx, b.ID)
	if team.JudgeID == nil || *team.JudgeID != morgan.ID {
		t.Fatalf("team %d lost its judge: %v", b.ID, team.JudgeID)
	}

	e := f.events.last()
	payload, ok := e.Payload.(judgeEvent)
	if e.Type != models.EventJudgeDeleted || !ok || !equalInts(payload.UnassignedFrom, []int{a.ID, c.ID}) {
		t.Fatalf("event = %s %#v", e.Type, e.Payload)
	}

	if err := f.directory.DeleteJudge(f.ctx, jamie.ID); !errors.Is(err, ErrJudgeNotFound) {
		t.Fatalf("second DeleteJudge = %v, want %v", err, ErrJudgeNotFound)
	}
	judges, _ := f.directory.ListJudges(f.ctx)
	if len(judges) != 1 || judges[0].ID != morgan.ID {
		t.Fatalf("ListJudges = %+v, want Morgan only", judges)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	ava := f.person(t, "Ava Nguyen")
	auth := NewAuthService(f.store)

	got, err := auth.Login(f.ctx, LoginInput{Email: "Ava.Nguyen@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != ava.ID || got.PasswordHash != "" {
		t.Fatalf("Login = %+v, want Ava without hash", got)
	}

	for _, in := range []LoginInput{
		{Email: "ava.nguyen@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "password123"},
	} {
		if _, err := auth.Login(f.ctx, in); !errors.Is(err, ErrAuthenticationFailed) {
			t.Fatalf("Login(%s) = %v, want %v", in.Email, err, ErrAuthenticationFailed)
		}
	}
}
