package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"planning_poker/internal/api"
	"planning_poker/internal/service"
	"planning_poker/internal/utils"
	"planning_poker/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.SetTokenSecret(cfg.JWT.Secret)

	services := service.NewServices(cfg)

	// Expired disconnected players and empty rooms are reclaimed in
	// the background, independent of request traffic
	go services.Sweeper.Run()

	r := gin.Default()
	api.SetupRoutes(r, services)

	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
