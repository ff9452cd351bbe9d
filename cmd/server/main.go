package main

import (
	"context"
	"dispatch-planner-service/internal/adapters/cache"
	"dispatch-planner-service/internal/adapters/optimization"
	"dispatch-planner-service/internal/adapters/repositories"
	"dispatch-planner-service/internal/api"
	"dispatch-planner-service/internal/config"
	"dispatch-planner-service/internal/platform/db"
	"dispatch-planner-service/internal/platform/metrics"
	"dispatch-planner-service/internal/ports"
	"dispatch-planner-service/internal/services"
	"dispatch-planner-service/internal/simulation"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, Redis, Mapbox) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer closeRepo()

	routes, tripCache, closeRedis, err := openRedis(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeRedis()

	optimizer, err := optimization.NewMapboxOptimizer(cfg.MapboxToken, cfg.MapboxBaseURL, tripCache)
	if err != nil {
		log.Fatal(err)
	}

	m := metrics.New()
	dispatcher := services.NewDispatcher(services.NewPlanner(repo, cfg.Depot), optimizer, routes, m)

	// Without an initial fix the vehicle stays unlocated and cycles are skipped
	// until the first PUT /vehicle/location.
	if cfg.InitialVehicle != nil {
		dispatcher.UpdateVehicleLocation(*cfg.InitialVehicle)
		log.Printf("vehicle located at %s", cfg.InitialVehicle)
	}

	if cfg.SimulateDropoff {
		go func() {
			if _, err := simulation.SeedDropoffs(ctx, dispatcher, simulation.DefaultDropoffs, 2*time.Second); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("simulation stopped: %v", err)
			}
		}()
	}

	router := api.NewRouter(dispatcher, m, optimizer.RedactedQueryURL)

	// Write timeout covers a cold optimizer call with retries.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s depot=%s", cfg.Port, cfg.Depot)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

// openRepository uses Postgres when a database URL is configured and an
// in-memory repository otherwise.
func openRepository(ctx context.Context, databaseURL string) (ports.RequestRepository, func(), error) {
	if databaseURL == "" {
		log.Println("DATABASE_URL not set, drop-offs are kept in memory")
		return repositories.NewMemoryRequestRepository(), func() {}, nil
	}

	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		return nil, nil, err
	}

	if err := repositories.InitSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open repository: %w", err)
	}

	return repositories.NewPostgresRequestRepository(conn), func() { _ = conn.Close() }, nil
}

// openRedis returns the displayed-route store and, when Redis is configured,
// the optimizer response cache.
func openRedis(ctx context.Context, cfg *config.Config) (ports.RouteStore, ports.TripCache, func(), error) {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set, displayed route is kept in memory")
		return cache.NewMemoryRouteStore(), nil, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("open redis: ping: %w", err)
	}

	closeFn := func() { _ = client.Close() }
	return cache.NewRedisRouteStore(client), cache.NewRedisTripCache(client, cfg.RouteCacheTTL), closeFn, nil
}
