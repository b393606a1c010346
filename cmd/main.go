package main

import (
	"log"

	"github.com/NzamaE/Footprint-Logger-Fullstack/config"
	"github.com/NzamaE/Footprint-Logger-Fullstack/logger"
	"github.com/NzamaE/Footprint-Logger-Fullstack/routes"
)

func main() {
	logger.Setup()

	cfg := config.Load()
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}

	r := routes.SetupRouter(db)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
