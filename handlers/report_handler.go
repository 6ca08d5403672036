package handlers

import (
	"net/http"

	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// ExportArrivals honours the same q and state parameters as GET /arrivals.
func (h *ReportHandler) ExportArrivals(w http.ResponseWriter, r *http.Request) {
	state, err := models.ParseArrivalStateFilter(r.URL.Query().Get("state"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.reportService.ExportArrivals(r.Context(), models.ArrivalFilter{
		Query: r.URL.Query().Get("q"),
		State: state,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"report": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReportHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	filter := models.TeamFilter{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("track"); raw != "" {
		track, ok := models.ParseTrack(raw)
		if !ok {
			badRequestResponse(w, r, services.ErrUnknownTrack)
			return
		}
		filter.Track = &track
	}

	result, err := h.reportService.ExportRoster(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"report": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
