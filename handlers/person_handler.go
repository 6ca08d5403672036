package handlers

import (
	"net/http"

	"github.com/Dosada05/hackathon-ops/services"
)

type PersonHandler struct {
	directoryService services.DirectoryService
	rosterService    services.RosterService
}

func NewPersonHandler(ds services.DirectoryService, rs services.RosterService) *PersonHandler {
	return &PersonHandler{
		directoryService: ds,
		rosterService:    rs,
	}
}

func (h *PersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.directoryService.ListPeople(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"people": people}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListAvailable returns invite candidates: people on no team, minus the caller.
func (h *PersonHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	callerID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	pool, err := h.rosterService.AvailablePool(r.Context(), callerID, r.URL.Query().Get("q"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"people": pool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
