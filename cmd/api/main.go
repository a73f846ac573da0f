// @title Questlog API
// @description API for gamified task tracker "Questlog"
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"

	"github.com/limbo/questlog/internal/api"
	"github.com/limbo/questlog/internal/repository"
	"github.com/limbo/questlog/internal/service"
	"github.com/limbo/questlog/pkg/cleanup"
	"github.com/limbo/questlog/pkg/config"
	jwtservice "github.com/limbo/questlog/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	defer cleanup.CleanUp()
	progressionService := service.NewProgressionService(repository.NewProgressionRepo(&dbCfg))
	questsService := service.NewQuestsService(
		repository.NewQuestsRepo(&dbCfg),
		repository.NewSubtasksRepo(&dbCfg),
		progressionService,
	)
	serv := api.New(&api.ServicesList{
		QuestsService:      questsService,
		ProgressionService: progressionService,
		JwtService:         jwtservice.New(cfg.GetString("JWT_SECRET")),
	})
	err := serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
}
