package routes

import (
	"net/http"

	"github.com/Dosada05/hackathon-ops/handlers"
	"github.com/Dosada05/hackathon-ops/middleware"
	"github.com/Dosada05/hackathon-ops/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Person    *handlers.PersonHandler
	Team      *handlers.TeamHandler
	Judge     *handlers.JudgeHandler
	Arrival   *handlers.ArrivalHandler
	Dashboard *handlers.DashboardHandler
	Report    *handlers.ReportHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, jwtSecret string, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate([]byte(jwtSecret)))
		adminOnly := middleware.Authorize(models.RoleAdmin)

		r.Get("/ws/{room}", h.WebSocket.ServeWs)

		r.Route("/people", func(r chi.Router) {
			r.Get("/", h.Person.ListPeople)
			r.Get("/available", h.Person.ListAvailable)
		})

		r.Get("/me/team", h.Team.MyTeam)

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.Team.ListTeams)
			r.Post("/", h.Team.CreateTeam)

			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", h.Team.GetTeam)
				r.Delete("/", h.Team.DisbandTeam)
				r.Get("/members", h.Team.ListMembers)
				r.Post("/members/{userID}", h.Team.AddMember)
				r.Delete("/members/{userID}", h.Team.RemoveMember)
				r.Put("/judge", h.Team.SetJudge)
				r.Put("/project", h.Team.SetProject)
				r.Put("/leader", h.Team.TransferLeadership)
			})
		})

		r.Route("/judges", func(r chi.Router) {
			r.Get("/", h.Judge.ListJudges)
			r.With(adminOnly).Post("/", h.Judge.CreateJudge)
			r.With(adminOnly).Delete("/{judgeID}", h.Judge.DeleteJudge)
		})

		r.Route("/arrivals", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", h.Arrival.ListArrivals)
			r.Get("/stats", h.Arrival.Stats)
			r.Get("/{userID}", h.Arrival.GetArrival)
			r.Post("/{userID}/arrive", h.Arrival.MarkArrived)
			r.Post("/{userID}/check-in", h.Arrival.CheckIn)
			r.Post("/{userID}/undo-check-in", h.Arrival.UndoCheckIn)
			r.Post("/{userID}/undo-arrive", h.Arrival.UndoArrival)
		})

		r.With(adminOnly).Get("/dashboard", h.Dashboard.Overview)

		r.Route("/reports", func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/arrivals", h.Report.ExportArrivals)
			r.Post("/roster", h.Report.ExportRoster)
		})
	})
}
