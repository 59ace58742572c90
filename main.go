package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"momentumAPI/handlers"
	"momentumAPI/internal/identity"
	"momentumAPI/internal/store"
	"momentumAPI/middleware"
	"momentumAPI/services"

	_ "net/http/pprof"
)

var (
	documentStore      store.Store
	streakService      *services.StreakService
	groupService       *services.GroupService
	leaderboardService *services.LeaderboardService
	analyticsService   *services.AnalyticsService
	identityProvider   identity.Provider
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	documentStore, err = newStore(ctx)
	if err != nil {
		log.Fatal("Failed to initialize document store:", err)
	}

	streakService = services.NewStreakService(documentStore)
	groupService = services.NewGroupService(documentStore)
	leaderboardService = services.NewLeaderboardService(documentStore)
	analyticsService = services.NewAnalyticsService()
	identityProvider = identity.NewClerkProvider()

	middleware.InitPrometheus()
}

// newStore selects the storage backend from STORE_BACKEND: firestore
// (default), postgres, or memory.
func newStore(ctx context.Context) (store.Store, error) {
	switch backend := os.Getenv("STORE_BACKEND"); backend {
	case "", "firestore":
		st, err := store.NewFirestoreStore(ctx, "./serviceAccountKey.json")
		if err != nil {
			return nil, err
		}
		log.Println("Using Firestore document store")
		return st, nil

	case "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			log.Fatal("DATABASE_URL environment variable is not set")
		}

		poolConfig, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			return nil, err
		}

		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, err
		}

		st := store.NewPostgresStore(pool)
		if err := st.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		log.Println("Using Postgres document store")
		return st, nil

	case "memory":
		log.Println("Using in-memory document store (data is not persisted)")
		return store.NewMemoryStore(), nil

	default:
		log.Fatalf("Unknown STORE_BACKEND %q", backend)
		return nil, nil
	}
}

func main() {
	streakHandler := handlers.NewStreakHandler(streakService)
	groupHandler := handlers.NewGroupHandler(groupService, leaderboardService, identityProvider)
	analyticsHandler := handlers.NewAnalyticsHandler(streakService, analyticsService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := documentStore.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "document store unreachable"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "momentum-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER (requires auth header)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.ClerkAuthMiddleware)

	api.HandleFunc("/streaks", streakHandler.GetStreaks).Methods("GET")
	api.HandleFunc("/streaks", streakHandler.AddStreak).Methods("POST")
	api.HandleFunc("/streaks/{id}/break", streakHandler.BreakStreak).Methods("POST")
	api.HandleFunc("/streaks/{id}", streakHandler.DeleteStreak).Methods("DELETE")

	api.HandleFunc("/arenas", groupHandler.GetGroups).Methods("GET")
	api.HandleFunc("/arenas", groupHandler.CreateGroup).Methods("POST")
	api.HandleFunc("/arenas/join", groupHandler.JoinGroup).Methods("POST")
	api.HandleFunc("/arenas/{id}/leave", groupHandler.LeaveGroup).Methods("POST")
	api.HandleFunc("/arenas/{id}", groupHandler.DeleteGroup).Methods("DELETE")
	api.HandleFunc("/arenas/{id}/leaderboard", groupHandler.GetLeaderboard).Methods("GET")

	api.HandleFunc("/analytics", analyticsHandler.GetAnalytics).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
