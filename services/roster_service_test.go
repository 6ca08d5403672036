package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/Dosada05/hackathon-ops/models"
)

func TestCreateTeamMakesFounderLeader(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	ava := f.person(t, "Ava Nguyen")

	team, err := f.roster.CreateTeam(f.ctx, CreateTeamInput{Name: "  Neon Ninjas ", FounderID: ava.ID})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if team.Name != "Neon Ninjas" {
		t.Fatalf("Name = %q, want trimmed %q", team.Name, "Neon Ninjas")
	}
	if team.LeaderID != ava.ID || !equalInts(team.MemberIDs, []int{ava.ID}) {
		t.Fatalf("leader = %d members = %v, want leader and sole member %d", team.LeaderID, team.MemberIDs, ava.ID)
	}
	if team.Track != models.TrackSoftware {
		t.Fatalf("Track = %q, want default %q", team.Track, models.TrackSoftware)
	}
	if got := f.events.types(); len(got) != 1 || got[0] != models.EventTeamCreated {
		t.Fatalf("events = %v, want [%s]", got, models.EventTeamCreated)
	}
}

func TestCreateTeamErrors(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	ava := f.person(t, "Ava Nguyen")
	f.team(t, "Neon Ninjas", ava)
	mateo := f.person(t, "Mateo Rivera")

	tests := []struct {
		name  string
		input CreateTeamInput
		want  error
	}{
		{"empty name", CreateTeamInput{Name: "", FounderID: mateo.ID}, ErrInvalidInput},
		{"whitespace name", CreateTeamInput{Name: " \t ", FounderID: mateo.ID}, ErrInvalidInput},
		{"unknown track", CreateTeamInput{Name: "Bots", Track: "Biology", FounderID: mateo.ID}, ErrInvalidInput},
		{"founder on a team", CreateTeamInput{Name: "Second", FounderID: ava.ID}, ErrAlreadyOnTeam},
		{"unknown founder", CreateTeamInput{Name: "Ghosts", FounderID: 999}, ErrNotFound},
		{"invalid founder id", CreateTeamInput{Name: "Ghosts", FounderID: 0}, ErrContractViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.roster.CreateTeam(f.ctx, tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CreateTeam error = %v, want %v", err, tt.want)
			}
		})
	}

	teams, _ := f.roster.ListTeams(f.ctx, models.TeamFilter{})
	if len(teams) != 1 {
		t.Fatalf("teams = %d, want failed creates to leave 1", len(teams))
	}
}

func TestCreateTeamHardwareTrack(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.person(t, "Sofia Patel")

	team, err := f.roster.CreateTeam(f.ctx, CreateTeamInput{Name: "Circuit Cowboys", Track: "hardware", FounderID: p.ID})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if team.Track != models.TrackHardware {
		t.Fatalf("Track = %q, want %q", team.Track, models.TrackHardware)
	}
}

// Neon Ninjas fills up, rejects a sixth member, and returns a removed member to the pool.
func TestRosterCapacityScenario(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 6)
	team := f.team(t, "Neon Ninjas", p[0], p[1], p[2], p[3], p[4])

	err := f.roster.AddMember(f.ctx, team.ID, p[5].ID)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("AddMember sixth = %v, want %v", err, ErrCapacityExceeded)
	}
	got, err := f.roster.GetTeam(f.ctx, team.ID)
	if err != nil {
		t.Fatalf("GetTeam: %v", err)
	}
	if want := personIDs(p[:5]); !equalInts(got.MemberIDs, want) {
		t.Fatalf("members after rejected add = %v, want %v", got.MemberIDs, want)
	}

	if err := f.roster.RemoveMember(f.ctx, team.ID, p[1].ID); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	got, _ = f.roster.GetTeam(f.ctx, team.ID)
	if want := []int{p[0].ID, p[2].ID, p[3].ID, p[4].ID}; !equalInts(got.MemberIDs, want) {
		t.Fatalf("members = %v, want %v", got.MemberIDs, want)
	}

	pool, err := f.roster.AvailablePool(f.ctx, 0, "")
	if err != nil {
		t.Fatalf("AvailablePool: %v", err)
	}
	if want := []int{p[1].ID, p[5].ID}; !equalInts(personIDs(pool), want) {
		t.Fatalf("pool = %v, want %v", personIDs(pool), want)
	}
	checkRosterInvariants(t, f)
}

func TestAddMemberErrors(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	ava := f.person(t, "Ava Nguyen")
	mateo := f.person(t, "Mateo Rivera")
	sofia := f.person(t, "Sofia Patel")
	neon := f.team(t, "Neon Ninjas", ava, mateo)
	desert := f.team(t, "Desert Debuggers", sofia)

	tests := []struct {
		name     string
		teamID   int
		personID int
		want     error
	}{
		{"already on this team", neon.ID, mateo.ID, ErrAlreadyOnTeam},
		{"leader of another team", neon.ID, sofia.ID, ErrAlreadyOnTeam},
		{"member of another team", desert.ID, mateo.ID, ErrAlreadyOnTeam},
		{"unknown team", 999, sofia.ID, ErrNotFound},
		{"unknown person", neon.ID, 999, ErrNotFound},
		{"invalid team id", -1, sofia.ID, ErrContractViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.roster.AddMember(f.ctx, tt.teamID, tt.personID)
			if !errors.Is(err, tt.want) {
				t.Fatalf("AddMember error = %v, want %v", err, tt.want)
			}
		})
	}
	checkRosterInvariants(t, f)
}

func TestRemoveMemberRejectsLeader(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 3)
	team := f.team(t, "Neon Ninjas", p[0], p[1], p[2])

	for _, remove := range []func() error{
		func() error { return f.roster.RemoveMember(f.ctx, team.ID, p[0].ID) },
		func() error { return f.roster.LeaveTeam(f.ctx, team.ID, p[0].ID) },
	} {
		if err := remove(); !errors.Is(err, ErrCannotRemoveLeader) {
			t.Fatalf("removing leader = %v, want %v", err, ErrCannotRemoveLeader)
		}
	}
	got, _ := f.roster.GetTeam(f.ctx, team.ID)
	if !equalInts(got.MemberIDs, personIDs(p)) || got.LeaderID != p[0].ID {
		t.Fatalf("team changed after rejected removal: leader %d members %v", got.LeaderID, got.MemberIDs)
	}
}

func TestRemoveMemberNotMember(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 3)
	neon := f.team(t, "Neon Ninjas", p[0])
	f.team(t, "Desert Debuggers", p[1])

	if err := f.roster.RemoveMember(f.ctx, neon.ID, p[1].ID); !errors.Is(err, ErrNotTeamMember) {
		t.Fatalf("RemoveMember other team's leader = %v, want %v", err, ErrNotTeamMember)
	}
	if err := f.roster.RemoveMember(f.ctx, neon.ID, p[2].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RemoveMember unassigned = %v, want NotFound", err)
	}
	if err := f.roster.RemoveMember(f.ctx, 999, p[2].ID); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("RemoveMember unknown team = %v, want %v", err, ErrTeamNotFound)
	}
}

func TestLeaveTeam(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 2)
	team := f.team(t, "Neon Ninjas", p[0], p[1])

	if err := f.roster.LeaveTeam(f.ctx, team.ID, p[1].ID); err != nil {
		t.Fatalf("LeaveTeam: %v", err)
	}
	if _, err := f.roster.TeamOf(f.ctx, p[1].ID); !errors.Is(err, ErrNoTeam) {
		t.Fatalf("TeamOf after leaving = %v, want %v", err, ErrNoTeam)
	}
	if got := f.events.last(); got.Type != models.EventTeamMemberLeft || got.Room != models.RoomTeams {
		t.Fatalf("last event = %s in %s, want %s in %s", got.Type, got.Room, models.EventTeamMemberLeft, models.RoomTeams)
	}
}

func TestDisbandTeamFreesEveryMember(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 4)
	team := f.team(t, "Neon Ninjas", p[0], p[1], p[2])

	if err := f.roster.DisbandTeam(f.ctx, team.ID); err != nil {
		t.Fatalf("DisbandTeam: %v", err)
	}

	pool, err := f.roster.AvailablePool(f.ctx, 0, "")
	if err != nil {
		t.Fatalf("AvailablePool: %v", err)
	}
	if want := personIDs(p); !equalInts(personIDs(pool), want) {
		t.Fatalf("pool = %v, want every former member once: %v", personIDs(pool), want)
	}
	teams, _ := f.roster.ListTeams(f.ctx, models.TeamFilter{})
	if len(teams) != 0 {
		t.Fatalf("teams after disband = %d, want 0", len(teams))
	}
	if _, err := f.roster.GetTeam(f.ctx, team.ID); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("GetTeam after disband = %v, want %v", err, ErrTeamNotFound)
	}
	if err := f.roster.DisbandTeam(f.ctx, team.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DisbandTeam = %v, want NotFound", err)
	}

	// The former leader may found a new team right away.
	f.team(t, "Desert Debuggers", p[0], p[3])
}

func TestOrderedMembersLeaderFirst(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 4)
	team := f.team(t, "Neon Ninjas", p[0], p[1], p[2], p[3])

	if err := f.roster.TransferLeadership(f.ctx, team.ID, p[2].ID); err != nil {
		t.Fatalf("TransferLeadership: %v", err)
	}
	got, err := f.roster.GetTeam(f.ctx, team.ID)
	if err != nil {
		t.Fatalf("GetTeam: %v", err)
	}
	if want := []int{p[2].ID, p[0].ID, p[1].ID, p[3].ID}; !equalInts(personIDs(got.Members), want) {
		t.Fatalf("ordered members = %v, want %v", personIDs(got.Members), want)
	}
	if want := personIDs(p); !equalInts(got.MemberIDs, want) {
		t.Fatalf("join order changed: %v, want %v", got.MemberIDs, want)
	}

	// The old leader is now an ordinary member and can be removed.
	if err := f.roster.RemoveMember(f.ctx, team.ID, p[0].ID); err != nil {
		t.Fatalf("RemoveMember old leader: %v", err)
	}
}

func TestOrderedMembersPure(t *testing.T) {
	people := map[int]models.Person{
		1: {ID: 1, Name: "A"},
		2: {ID: 2, Name: "B"},
		3: {ID: 3, Name: "C"},
	}
	team := &models.Team{LeaderID: 3, MemberIDs: []int{1, 2, 3}}

	got := OrderedMembers(team, people)
	if want := []int{3, 1, 2}; !equalInts(personIDs(got), want) {
		t.Fatalf("OrderedMembers = %v, want %v", personIDs(got), want)
	}
}

func TestTransferLeadershipErrors(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 2)
	team := f.team(t, "Neon Ninjas", p[0])

	if err := f.roster.TransferLeadership(f.ctx, team.ID, p[1].ID); !errors.Is(err, ErrNotTeamMember) {
		t.Fatalf("TransferLeadership to outsider = %v, want %v", err, ErrNotTeamMember)
	}
	before := len(f.events.types())
	if err := f.roster.TransferLeadership(f.ctx, team.ID, p[0].ID); err != nil {
		t.Fatalf("TransferLeadership to current leader: %v", err)
	}
	if after := len(f.events.types()); after != before {
		t.Fatalf("no-op transfer published %d events", after-before)
	}
}

func TestSetProjectRequiresLeader(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 2)
	team := f.team(t, "Neon Ninjas", p[0], p[1])
	project := models.Project{Name: "Glowboard", Details: " LED dashboards for hack nights "}

	if err := f.roster.SetProject(f.ctx, team.ID, project, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("SetProject as member = %v, want %v", err, ErrForbidden)
	}
	if err := f.roster.SetProject(f.ctx, team.ID, project, true); err != nil {
		t.Fatalf("SetProject as leader: %v", err)
	}
	got, _ := f.roster.GetTeam(f.ctx, team.ID)
	if got.Project.Name != "Glowboard" || got.Project.Details != "LED dashboards for hack nights" {
		t.Fatalf("Project = %+v", got.Project)
	}
	if err := f.roster.SetProject(f.ctx, 999, project, true); !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("SetProject unknown team = %v, want %v", err, ErrTeamNotFound)
	}
}

func TestSetJudge(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.person(t, "Ava Nguyen")
	team := f.team(t, "Neon Ninjas", p)
	jamie := f.judge(t, "Jamie Park")

	if err := f.roster.SetJudge(f.ctx, team.ID, &jamie.ID); err != nil {
		t.Fatalf("SetJudge: %v", err)
	}
	got, _ := f.roster.GetTeam(f.ctx, team.ID)
	if got.Judge == nil || got.Judge.Name != "Jamie Park" {
		t.Fatalf("Judge = %+v, want Jamie Park", got.Judge)
	}

	unknown := 999
	if err := f.roster.SetJudge(f.ctx, team.ID, &unknown); !errors.Is(err, ErrJudgeNotFound) {
		t.Fatalf("SetJudge unknown = %v, want %v", err, ErrJudgeNotFound)
	}
	if err := f.roster.SetJudge(f.ctx, team.ID, nil); err != nil {
		t.Fatalf("SetJudge nil: %v", err)
	}
	got, _ = f.roster.GetTeam(f.ctx, team.ID)
	if got.JudgeID != nil || got.Judge != nil {
		t.Fatalf("judge not cleared: %v", got.JudgeID)
	}
}

func TestListTeamsFilter(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	ava := f.person(t, "Ava Nguyen")
	mateo := f.person(t, "Mateo Rivera")
	sofia := f.person(t, "Sofia Patel")
	neon := f.team(t, "Neon Ninjas", ava)
	circuit, err := f.roster.CreateTeam(f.ctx, CreateTeamInput{Name: "Circuit Cowboys", Track: "Hardware", FounderID: mateo.ID})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	desert := f.team(t, "Desert Debuggers", sofia)
	riley := f.judge(t, "Riley Gomez")
	if err := f.roster.SetJudge(f.ctx, desert.ID, &riley.ID); err != nil {
		t.Fatalf("SetJudge: %v", err)
	}

	hardware := models.TrackHardware
	software := models.TrackSoftware
	tests := []struct {
		name   string
		filter models.TeamFilter
		want   []int
	}{
		{"all in creation order", models.TeamFilter{}, []int{neon.ID, circuit.ID, desert.ID}},
		{"hardware", models.TeamFilter{Track: &hardware}, []int{circuit.ID}},
		{"software", models.TeamFilter{Track: &software}, []int{neon.ID, desert.ID}},
		{"team name", models.TeamFilter{Query: "NINJA"}, []int{neon.ID}},
		{"member email", models.TeamFilter{Query: "mateo.rivera@"}, []int{circuit.ID}},
		{"judge name", models.TeamFilter{Query: "riley"}, []int{desert.ID}},
		{"track and query", models.TeamFilter{Track: &hardware, Query: "ninja"}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams, err := f.roster.ListTeams(f.ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTeams: %v", err)
			}
			got := make([]int, 0, len(teams))
			for _, team := range teams {
				got = append(got, team.ID)
			}
			if !equalInts(got, tt.want) {
				t.Fatalf("ListTeams = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAvailablePoolExcludesViewer(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	ava := f.person(t, "Ava Nguyen")
	mateo := f.person(t, "Mateo Rivera")
	sofia := f.person(t, "Sofia Patel")
	f.team(t, "Neon Ninjas", ava)

	pool, err := f.roster.AvailablePool(f.ctx, mateo.ID, "")
	if err != nil {
		t.Fatalf("AvailablePool: %v", err)
	}
	if want := []int{sofia.ID}; !equalInts(personIDs(pool), want) {
		t.Fatalf("pool = %v, want %v", personIDs(pool), want)
	}
	pool, _ = f.roster.AvailablePool(f.ctx, 0, "PATEL")
	if want := []int{sofia.ID}; !equalInts(personIDs(pool), want) {
		t.Fatalf("pool search = %v, want %v", personIDs(pool), want)
	}
}

func TestDeriveTeamStatus(t *testing.T) {
	tests := []struct {
		name     string
		members  []int
		arrivals map[int]models.ArrivalState
		want     models.TeamStatus
	}{
		{"solo", []int{1}, map[int]models.ArrivalState{1: models.ArrivalCheckedIn}, models.TeamStatusIncomplete},
		{"pair not checked in", []int{1, 2}, map[int]models.ArrivalState{1: models.ArrivalCheckedIn, 2: models.ArrivalArrived}, models.TeamStatusReady},
		{"pair missing record", []int{1, 2}, map[int]models.ArrivalState{1: models.ArrivalCheckedIn}, models.TeamStatusReady},
		{"all checked in", []int{1, 2, 3}, map[int]models.ArrivalState{1: models.ArrivalCheckedIn, 2: models.ArrivalCheckedIn, 3: models.ArrivalCheckedIn}, models.TeamStatusCheckedIn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team := &models.Team{LeaderID: tt.members[0], MemberIDs: tt.members}
			if got := DeriveTeamStatus(team, tt.arrivals); got != tt.want {
				t.Fatalf("DeriveTeamStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConcurrentAddsRespectCapacity(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 12)
	team := f.team(t, "Neon Ninjas", p[0])

	var wg sync.WaitGroup
	var mu sync.Mutex
	added, full := 0, 0
	for _, candidate := range p[1:] {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := f.roster.AddMember(f.ctx, team.ID, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				added++
			case errors.Is(err, ErrCapacityExceeded):
				full++
			default:
				t.Errorf("AddMember(%d): %v", id, err)
			}
		}(candidate.ID)
	}
	wg.Wait()

	if added != DefaultTeamLimit-1 || full != len(p)-DefaultTeamLimit {
		t.Fatalf("added %d rejected %d, want %d and %d", added, full, DefaultTeamLimit-1, len(p)-DefaultTeamLimit)
	}
	checkRosterInvariants(t, f)
}

func TestConcurrentAddsOfOnePersonToTwoTeams(t *testing.T) {
	f := newFixture(t, models.ArrivalModeThreeState)
	p := f.people(t, 7)
	teams := []*models.Team{
		f.team(t, "Neon Ninjas", p[0]),
		f.team(t, "Circuit Cowboys", p[1]),
		f.team(t, "Desert Debuggers", p[2]),
	}

	for _, contested := range p[3:] {
		var wg sync.WaitGroup
		errs := make([]error, len(teams))
		for i, team := range teams {
			wg.Add(1)
			go func(i, teamID int) {
				defer wg.Done()
				errs[i] = f.roster.AddMember(f.ctx, teamID, contested.ID)
			}(i, team.ID)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case !errors.Is(err, ErrAlreadyOnTeam):
				t.Fatalf("AddMember: %v", err)
			}
		}
		if wins != 1 {
			t.Fatalf("person %d added to %d teams, want exactly 1", contested.ID, wins)
		}
	}
	checkRosterInvariants(t, f)
}
