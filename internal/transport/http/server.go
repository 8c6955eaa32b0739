package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"fictionverse/internal/auth"
	"fictionverse/internal/config"
	"fictionverse/internal/handler"
	"fictionverse/internal/kvstore"
	"fictionverse/internal/queue"
	"fictionverse/internal/repository"
	"fictionverse/internal/service"
	"fictionverse/internal/supabase"
	"fictionverse/internal/worker"
)

func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Open the KV store backend
	store, redisStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	// 3. Identity provider client and token verifier
	supaClient := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey)
	verifier := auth.NewVerifier(supaClient)

	// 4. Repositories and services
	profileRepo := repository.NewProfileRepository(store)
	storyRepo := repository.NewStoryRepository(store)
	likeRepo := repository.NewLikeRepository(store)
	prefsRepo := repository.NewPreferencesRepository(store)

	profileService := service.NewProfileService(profileRepo, prefsRepo)
	authService := service.NewAuthService(supaClient, profileRepo, prefsRepo)
	storyService := service.NewStoryService(storyRepo, likeRepo, profileService)
	preferencesService := service.NewPreferencesService(prefsRepo)
	adminService := service.NewAdminService(store, supaClient)

	// 5. Optional like-event pipeline (needs the redis backend)
	var manager *worker.Manager
	if cfg.QueueEnabled {
		if redisStore == nil {
			log.Println("QUEUE_ENABLED is set but the store backend is not redis, like events disabled")
		} else {
			storyService.SetPublisher(queue.NewPublisher(redisStore.Client()))

			consumer := queue.NewConsumer(redisStore.Client())
			manager = worker.NewManager(consumer, worker.NewHandler(profileService), worker.ManagerConfig{
				WorkerCount: cfg.WorkerCount,
			})
			if err := manager.Start(context.Background()); err != nil {
				return fmt.Errorf("failed to start like workers: %w", err)
			}
		}
	}

	// 6. Router
	router := NewRouter(RouterConfig{
		AuthHandler:        handler.NewAuthHandler(authService, profileService),
		StoryHandler:       handler.NewStoryHandler(storyService),
		PreferencesHandler: handler.NewPreferencesHandler(preferencesService),
		AdminHandler:       handler.NewAdminHandler(adminService, cfg.AdminTokenHash),
		Verifier:           verifier,
		BasePath:           cfg.BasePath,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// 7. Serve until interrupted, then drain workers
	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s (base path %s, store %s)", cfg.ServerPort, cfg.BasePath, cfg.StoreBackend)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
	}

	if manager != nil {
		manager.Stop()
	}
	return server.Shutdown(context.Background())
}

// openStore selects the KV backend from configuration. The second return is
// non-nil only for the redis backend, whose client is shared with the like
// stream.
func openStore(cfg *config.Config) (kvstore.Store, *kvstore.RedisStore, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return kvstore.NewMemoryStore(), nil, nil
	case config.StoreRedis:
		rs, err := kvstore.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if err := rs.Ping(context.Background()); err != nil {
			return nil, nil, err
		}
		return rs, rs, nil
	case config.StorePostgres:
		ps, err := kvstore.NewPostgresStore(kvstore.PostgresConfig{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		})
		if err != nil {
			return nil, nil, err
		}
		return ps, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
