package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tangent-planner/internal/config"
	"tangent-planner/internal/server"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	addr := flag.String("addr", "", "listen address, overrides the config")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	log.Println("========================================")
	log.Println("🚀 Tangent Graph Planner Server")
	log.Println("========================================")
	log.Printf("Actor radius: %.3f, heuristic: %s\n", cfg.ActorRadius, cfg.Heuristic)

	srv := server.New(cfg).HTTPServer()

	go func() {
		log.Printf("Server starting on %s\n", srv.Addr)
		log.Println("")
		log.Println("Endpoints:")
		log.Println("  GET    /health              - Check server status")
		log.Println("  POST   /route               - Plan once from start to goal")
		log.Println("  POST   /agents              - Create an agent session")
		log.Println("  GET    /agents/{id}         - Agent state")
		log.Println("  DELETE /agents/{id}         - Remove an agent")
		log.Println("  PUT    /agents/{id}/goal    - Set the agent's goal")
		log.Println("  DELETE /agents/{id}/goal    - Clear the agent's goal")
		log.Println("  POST   /agents/{id}/tick    - Next target for the agent's position")
		log.Println("  GET    /agents/{id}/path    - Current path as GeoJSON")
		log.Println("========================================")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Println("HTTP server stopped")
}
