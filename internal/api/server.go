package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/limbo/questlog/internal/service"
	jwtservice "github.com/limbo/questlog/pkg/jwt_service"
)

type JWTServiceI interface {
	ParseToken(tokenString string) (*jwtservice.Claims, error)
}

type Server struct {
	mx                 *chi.Mux
	questsService      service.QuestsServiceI
	progressionService service.ProgressionServiceI
	jwtService         JWTServiceI
}

type ServicesList struct {
	QuestsService      service.QuestsServiceI
	ProgressionService service.ProgressionServiceI
	JwtService         JWTServiceI
}

func New(servicesOptions *ServicesList) *Server {
	if servicesOptions.QuestsService == nil || servicesOptions.ProgressionService == nil || servicesOptions.JwtService == nil {
		log.Fatal("on api server provided nil services")
	}
	return &Server{
		mx:                 chi.NewMux(),
		questsService:      servicesOptions.QuestsService,
		progressionService: servicesOptions.ProgressionService,
		jwtService:         servicesOptions.JwtService,
	}
}

// Handler wires middleware and routes; exposed separately from Run so tests
// can drive the mux with httptest.
func (s *Server) Handler() http.Handler {
	s.mx.Use(s.RequestIDMiddleware)
	s.mx.Use(s.SettingUpLoggerMiddleware)
	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.AuthMiddleware)
			r.Use(s.LoggerExtensionMiddleware)
			r.Post("/quests", s.CreateQuest)
			r.Get("/quests", s.GetQuests)
			r.Patch("/quests/{id}", s.UpdateQuest)
			r.Delete("/quests/{id}", s.DeleteQuest)
			r.Post("/quests/{id}/status", s.ChangeQuestStatus)
			r.Post("/quests/{id}/subtasks", s.CreateSubtask)
			r.Patch("/quests/{id}/subtasks/{sid}", s.UpdateSubtask)
			r.Delete("/quests/{id}/subtasks/{sid}", s.DeleteSubtask)
			r.Post("/quests/{id}/subtasks/{sid}/status", s.ChangeSubtaskStatus)
			r.Get("/views/board", s.BoardView)
			r.Get("/views/list", s.ListView)
			r.Get("/views/calendar", s.CalendarView)
			r.Get("/progression", s.GetProgression)
		})
	})
	return s.mx
}

func (s *Server) Run(address string) error {
	return http.ListenAndServe(address, s.Handler())
}
