package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/hackathon-ops/middleware"
	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/services"
)

type TeamHandler struct {
	rosterService services.RosterService
}

func NewTeamHandler(rs services.RosterService) *TeamHandler {
	return &TeamHandler{rosterService: rs}
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	filter := models.TeamFilter{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("track"); raw != "" {
		track, ok := models.ParseTrack(raw)
		if !ok {
			badRequestResponse(w, r, services.ErrUnknownTrack)
			return
		}
		filter.Track = &track
	}

	teams, err := h.rosterService.ListTeams(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	callerID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	input.FounderID = callerID

	team, err := h.rosterService.CreateTeam(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	// Ответ с участниками и статусом.
	hydrated, err := h.rosterService.GetTeam(r.Context(), team.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": hydrated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.rosterService.GetTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMembers returns members leader first, then in join order.
func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.rosterService.GetTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	response := jsonResponse{
		"leader_id": team.LeaderID,
		"limit":     h.rosterService.Limit(),
		"members":   team.Members,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) MyTeam(w http.ResponseWriter, r *http.Request) {
	callerID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	team, err := h.rosterService.TeamOf(r.Context(), callerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	teamID, userID, ok := h.teamAndUser(w, r)
	if !ok {
		return
	}
	if _, ok := h.authorizeLeaderOrAdmin(w, r, teamID); !ok {
		return
	}

	if err := h.rosterService.AddMember(r.Context(), teamID, userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember is a leave when callers remove themselves; otherwise the leader or an admin removes.
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, userID, ok := h.teamAndUser(w, r)
	if !ok {
		return
	}
	callerID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var err error
	if callerID == userID {
		err = h.rosterService.LeaveTeam(r.Context(), teamID, userID)
	} else {
		if _, ok := h.authorizeLeaderOrAdmin(w, r, teamID); !ok {
			return
		}
		err = h.rosterService.RemoveMember(r.Context(), teamID, userID)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) DisbandTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, ok := h.authorizeLeaderOrAdmin(w, r, teamID); !ok {
		return
	}

	if err := h.rosterService.DisbandTeam(r.Context(), teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeamHandler) SetJudge(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		JudgeID *int `json:"judge_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, ok := h.authorizeLeaderOrAdmin(w, r, teamID); !ok {
		return
	}

	if err := h.rosterService.SetJudge(r.Context(), teamID, input.JudgeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondTeam(w, r, teamID)
}

// SetProject is leader-only; the roster service rejects anyone else.
func (h *TeamHandler) SetProject(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var project models.Project
	if err := readJSON(w, r, &project); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	callerID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	team, err := h.rosterService.GetTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := h.rosterService.SetProject(r.Context(), teamID, project, team.IsLeader(callerID)); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondTeam(w, r, teamID)
}

func (h *TeamHandler) TransferLeadership(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		LeaderID int `json:"leader_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.LeaderID <= 0 {
		badRequestResponse(w, r, errors.New("leader_id is required"))
		return
	}
	if _, ok := h.authorizeLeaderOrAdmin(w, r, teamID); !ok {
		return
	}

	if err := h.rosterService.TransferLeadership(r.Context(), teamID, input.LeaderID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respondTeam(w, r, teamID)
}

func (h *TeamHandler) teamAndUser(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, false
	}
	return teamID, userID, true
}

// authorizeLeaderOrAdmin writes the error response itself and returns false on failure.
func (h *TeamHandler) authorizeLeaderOrAdmin(w http.ResponseWriter, r *http.Request, teamID int) (*models.Team, bool) {
	callerID, ok := currentUserID(w, r)
	if !ok {
		return nil, false
	}
	team, err := h.rosterService.GetTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return nil, false
	}
	if !team.IsLeader(callerID) && !middleware.IsAdmin(r.Context()) {
		mapServiceErrorToHTTP(w, r, services.ErrLeaderOnlyAction)
		return nil, false
	}
	return team, true
}

func (h *TeamHandler) respondTeam(w http.ResponseWriter, r *http.Request, teamID int) {
	team, err := h.rosterService.GetTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
