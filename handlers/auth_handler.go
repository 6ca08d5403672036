package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/hackathon-ops/models"
	"github.com/Dosada05/hackathon-ops/services"
	"github.com/Dosada05/hackathon-ops/utils"
)

type AuthHandler struct {
	authService      services.AuthService
	directoryService services.DirectoryService
	jwtSecret        []byte
	now              func() time.Time
}

func NewAuthHandler(authService services.AuthService, directoryService services.DirectoryService, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		directoryService: directoryService,
		jwtSecret:        []byte(jwtSecret),
		now:              time.Now,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterPersonInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	person, err := h.directoryService.RegisterPerson(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, person)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Email == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("email and password are required"))
		return
	}

	person, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, person)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, person *models.Person) {
	token, err := utils.GenerateJWT(h.jwtSecret, person.ID, string(person.Role), h.now())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"token":  token,
		"person": person,
	}
	if err := writeJSON(w, status, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
