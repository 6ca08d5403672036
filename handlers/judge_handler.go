package handlers

import (
	"net/http"

	"github.com/Dosada05/hackathon-ops/services"
)

type JudgeHandler struct {
	directoryService services.DirectoryService
}

func NewJudgeHandler(ds services.DirectoryService) *JudgeHandler {
	return &JudgeHandler{directoryService: ds}
}

func (h *JudgeHandler) ListJudges(w http.ResponseWriter, r *http.Request) {
	judges, err := h.directoryService.ListJudges(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"judges": judges}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *JudgeHandler) CreateJudge(w http.ResponseWriter, r *http.Request) {
	var input services.CreateJudgeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	judge, err := h.directoryService.CreateJudge(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"judge": judge}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteJudge also unassigns the judge from every team.
func (h *JudgeHandler) DeleteJudge(w http.ResponseWriter, r *http.Request) {
	judgeID, err := getIDFromURL(r, "judgeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.directoryService.DeleteJudge(r.Context(), judgeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
