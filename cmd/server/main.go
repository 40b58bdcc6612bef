package main

import (
	"log"

	_ "taskflow/docs"
	"taskflow/internal/config"
	"taskflow/internal/server"
)

// @title           Taskflow API
// @version         1.0
// @description     Collaborative project and task workflow engine.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
