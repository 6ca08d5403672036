package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/hackathon-ops/broadcast"
	"github.com/Dosada05/hackathon-ops/handlers"
	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/repositories"
	"github.com/Dosada05/hackathon-ops/services"
	"github.com/Dosada05/hackathon-ops/utils"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "routes-test-secret"

func TestMain(m *testing.M) {
	utils.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type testAPI struct {
	server     *httptest.Server
	hub        *broadcast.Hub
	adminToken string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := broadcast.NewHub(logger)
	go hub.Run(ctx)

	roster := services.NewRosterService(store, services.DefaultTeamLimit, hub, logger)
	arrivals := services.NewArrivalService(store, models.ArrivalModeThreeState, hub, logger)
	directory := services.NewDirectoryService(store, hub, logger)
	reports := services.NewReportService(roster, arrivals, nil, logger)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Auth:      handlers.NewAuthHandler(services.NewAuthService(store), directory, testSecret),
		Person:    handlers.NewPersonHandler(directory, roster),
		Team:      handlers.NewTeamHandler(roster),
		Judge:     handlers.NewJudgeHandler(directory),
		Arrival:   handlers.NewArrivalHandler(arrivals),
		Dashboard: handlers.NewDashboardHandler(services.NewDashboardService(roster, arrivals, directory)),
		Report:    handlers.NewReportHandler(reports),
		WebSocket: handlers.NewWebSocketHandler(hub, []string{"*"}),
	}, testSecret, []string{"*"})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	admin, err := directory.RegisterPerson(context.Background(), services.RegisterPersonInput{
		Name: "Event Admin", Email: "admin@demo.com", Password: "password123", Role: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	token, err := utils.GenerateJWT([]byte(testSecret), admin.ID, string(models.RoleAdmin), time.Now())
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	return &testAPI{server: server, hub: hub, adminToken: token}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, decoded
}

// register signs a participant up through the API and returns their id and token.
func (a *testAPI) register(t *testing.T, name string) (int, string) {
	t.Helper()
	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@unlv.edu"
	status, body := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %v", name, status, body)
	}
	person := body["person"].(map[string]any)
	return int(person["id"].(float64)), body["token"].(string)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	status, _ := api.do(t, http.MethodGet, "/healthz", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/teams", "/people", "/arrivals", "/dashboard"} {
		status, _ := api.do(t, http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, status)
		}
	}
}

func TestLoginReturnsToken(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Ava Nguyen")

	status, body := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "AVA.NGUYEN@unlv.edu", "password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d, body = %v", status, body)
	}
	if body["token"] == "" {
		t.Fatal("login returned no token")
	}

	status, _ = api.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "ava.nguyen@unlv.edu", "password": "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", status)
	}
}

func TestTeamLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	avaID, ava := api.register(t, "Ava Nguyen")
	liamID, liam := api.register(t, "Liam Chen")
	_, priya := api.register(t, "Priya Shah")

	status, body := api.do(t, http.MethodPost, "/teams", ava, map[string]string{"name": "Neon Ninjas", "track": "software"})
	if status != http.StatusCreated {
		t.Fatalf("create team status = %d, body = %v", status, body)
	}
	team := body["team"].(map[string]any)
	teamID := int(team["id"].(float64))
	if got := int(team["leader_id"].(float64)); got != avaID {
		t.Fatalf("leader_id = %d, want %d", got, avaID)
	}
	if team["status"] != string(models.TeamStatusIncomplete) {
		t.Fatalf("status = %v, want %s", team["status"], models.TeamStatusIncomplete)
	}

	membersPath := fmt.Sprintf("/teams/%d/members/%d", teamID, liamID)

	if status, _ := api.do(t, http.MethodPost, membersPath, priya, nil); status != http.StatusForbidden {
		t.Fatalf("non-leader add status = %d, want 403", status)
	}
	if status, _ := api.do(t, http.MethodPost, membersPath, ava, nil); status != http.StatusNoContent {
		t.Fatalf("add member status = %d, want 204", status)
	}
	if status, _ := api.do(t, http.MethodPost, membersPath, ava, nil); status != http.StatusConflict {
		t.Fatalf("second add status = %d, want 409", status)
	}
	if status, _ := api.do(t, http.MethodPost, "/teams", liam, map[string]string{"name": "Other", "track": "Hardware"}); status != http.StatusConflict {
		t.Fatalf("member creating a team status = %d, want 409", status)
	}

	leaderPath := fmt.Sprintf("/teams/%d/members/%d", teamID, avaID)
	if status, _ := api.do(t, http.MethodDelete, leaderPath, ava, nil); status != http.StatusBadRequest {
		t.Fatalf("leader leave status = %d, want 400", status)
	}

	status, body = api.do(t, http.MethodGet, fmt.Sprintf("/teams/%d/members", teamID), liam, nil)
	if status != http.StatusOK {
		t.Fatalf("list members status = %d", status)
	}
	members := body["members"].([]any)
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}
	if first := int(members[0].(map[string]any)["id"].(float64)); first != avaID {
		t.Fatalf("first member = %d, want leader %d", first, avaID)
	}
	if limit := int(body["limit"].(float64)); limit != services.DefaultTeamLimit {
		t.Fatalf("limit = %d, want %d", limit, services.DefaultTeamLimit)
	}

	// Liam leaving is a self-removal.
	if status, _ := api.do(t, http.MethodDelete, membersPath, liam, nil); status != http.StatusNoContent {
		t.Fatalf("leave status = %d, want 204", status)
	}
	if status, _ := api.do(t, http.MethodGet, "/me/team", liam, nil); status != http.StatusNotFound {
		t.Fatalf("me/team after leave status = %d, want 404", status)
	}

	status, body = api.do(t, http.MethodGet, "/people/available", ava, nil)
	if status != http.StatusOK {
		t.Fatalf("available status = %d", status)
	}
	// Admin, Liam and Priya are unassigned; Ava leads a team.
	if got := len(body["people"].([]any)); got != 3 {
		t.Fatalf("available = %d, want 3", got)
	}
}

func TestArrivalsAreAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	avaID, ava := api.register(t, "Ava Nguyen")

	if status, _ := api.do(t, http.MethodGet, "/arrivals", ava, nil); status != http.StatusForbidden {
		t.Fatalf("participant arrivals status = %d, want 403", status)
	}

	status, body := api.do(t, http.MethodGet, "/arrivals", api.adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("admin arrivals status = %d", status)
	}
	if body["mode"] != string(models.ArrivalModeThreeState) {
		t.Fatalf("mode = %v", body["mode"])
	}

	checkIn := fmt.Sprintf("/arrivals/%d/check-in", avaID)
	if status, _ := api.do(t, http.MethodPost, checkIn, api.adminToken, nil); status != http.StatusBadRequest {
		t.Fatalf("check-in before arrival status = %d, want 400", status)
	}
	if status, _ := api.do(t, http.MethodPost, fmt.Sprintf("/arrivals/%d/arrive", avaID), api.adminToken, nil); status != http.StatusOK {
		t.Fatalf("arrive status = %d, want 200", status)
	}
	if status, _ := api.do(t, http.MethodPost, checkIn, api.adminToken, nil); status != http.StatusOK {
		t.Fatalf("check-in status = %d, want 200", status)
	}

	status, body = api.do(t, http.MethodGet, "/arrivals?state=checked_in", api.adminToken, nil)
	if status != http.StatusOK {
		t.Fatalf("filtered arrivals status = %d", status)
	}
	if got := len(body["arrivals"].([]any)); got != 1 {
		t.Fatalf("checked-in arrivals = %d, want 1", got)
	}

	if status, _ := api.do(t, http.MethodGet, "/arrivals/9999", api.adminToken, nil); status != http.StatusNotFound {
		t.Fatalf("unknown arrival status = %d, want 404", status)
	}
}

func TestJudgeWritesAreAdminOnly(t *testing.T) {
	api := newTestAPI(t)
	_, ava := api.register(t, "Ava Nguyen")
	judge := map[string]string{"name": "Jamie Park", "email": "jamie.park@unlv.edu"}

	if status, _ := api.do(t, http.MethodPost, "/judges", ava, judge); status != http.StatusForbidden {
		t.Fatalf("participant create judge status = %d, want 403", status)
	}
	if status, _ := api.do(t, http.MethodPost, "/judges", api.adminToken, judge); status != http.StatusCreated {
		t.Fatalf("admin create judge status = %d, want 201", status)
	}
	if status, _ := api.do(t, http.MethodPost, "/judges", api.adminToken, judge); status != http.StatusConflict {
		t.Fatalf("duplicate judge status = %d, want 409", status)
	}
}

func TestReportsUnavailableWithoutStorage(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/reports/arrivals", "/reports/roster"} {
		status, _ := api.do(t, http.MethodPost, path, api.adminToken, nil)
		if status != http.StatusServiceUnavailable {
			t.Errorf("POST %s status = %d, want 503", path, status)
		}
	}
}

func TestWebSocketReceivesTeamEvents(t *testing.T) {
	api := newTestAPI(t)
	_, ava := api.register(t, "Ava Nguyen")

	wsURL := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/ws/" + models.RoomTeams + "?token=" + ava
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("handshake status = %d", resp.StatusCode)
	}

	deadline := time.Now().Add(2 * time.Second)
	for api.hub.RoomSize(models.RoomTeams) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never joined the teams room")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if status, _ := api.do(t, http.MethodPost, "/teams", ava, map[string]string{"name": "Neon Ninjas", "track": "Software"}); status != http.StatusCreated {
		t.Fatalf("create team status = %d", status)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event models.LiveEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Type != models.EventTeamCreated || event.Room != models.RoomTeams {
		t.Fatalf("event = %s in %s, want %s in %s", event.Type, event.Room, models.EventTeamCreated, models.RoomTeams)
	}
}

func TestWebSocketUnknownRoom(t *testing.T) {
	api := newTestAPI(t)
	_, ava := api.register(t, "Ava Nguyen")

	status, _ := api.do(t, http.MethodGet, "/ws/lobby", ava, nil)
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
}
