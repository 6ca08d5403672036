package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/services"
)

type ArrivalHandler struct {
	arrivalService services.ArrivalService
}

func NewArrivalHandler(as services.ArrivalService) *ArrivalHandler {
	return &ArrivalHandler{arrivalService: as}
}

func (h *ArrivalHandler) ListArrivals(w http.ResponseWriter, r *http.Request) {
	state, err := models.ParseArrivalStateFilter(r.URL.Query().Get("state"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	arrivals, err := h.arrivalService.List(r.Context(), models.ArrivalFilter{
		Query: r.URL.Query().Get("q"),
		State: state,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	response := jsonResponse{
		"mode":     h.arrivalService.Mode(),
		"arrivals": arrivals,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArrivalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.arrivalService.Stats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArrivalHandler) GetArrival(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	arrival, err := h.arrivalService.Get(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"arrival": arrival}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ArrivalHandler) MarkArrived(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.arrivalService.MarkArrived)
}

func (h *ArrivalHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.arrivalService.CheckIn)
}

func (h *ArrivalHandler) UndoCheckIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.arrivalService.UndoCheckIn)
}

func (h *ArrivalHandler) UndoArrival(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.arrivalService.UndoArrival)
}

func (h *ArrivalHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, int) (*models.ArrivalRecord, error)) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	record, err := apply(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"arrival": record}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
