package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sociomate/auth"
	"sociomate/config"
	"sociomate/database"
	"sociomate/handlers"
	"sociomate/logging"
	"sociomate/repository"
	"sociomate/routes"
	"sociomate/service"
	"sociomate/storage"
	"sociomate/views"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid config")
	}

	logging.Info().Str("datastore", cfg.Datastore).Str("storage", cfg.Storage).Msg("starting SocioMate server")

	store, client, err := openStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("open datastore")
	}
	if client != nil {
		defer database.Disconnect(client)
	}

	uploads, err := openUploads(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("open upload storage")
	}

	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	tokens := auth.NewTokens(cfg.Secret(), cfg.TokenTTL)
	h := handlers.New(
		service.NewPosts(store, uploads),
		service.NewUsers(store, uploads, tokens, service.UsersOptions{RejectSelfFollow: cfg.RejectSelfFollow}),
		views.NewRenderer(cfg.PublicOrigin),
		cfg.RequestTimeout,
	)

	opts := routes.Options{CORSOrigins: cfg.CORSOrigins, MaxUploadBytes: cfg.MaxUploadBytes}
	if cfg.Storage == config.StorageLocal {
		opts.UploadDir = cfg.UploadDir
	}
	router := routes.SetupRouter(h, tokens, opts)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("forced shutdown")
	}

	logging.Info().Msg("server stopped")
}

// openStore returns the configured repository backend. The mongo client is
// nil for the in-memory backend.
func openStore(cfg *config.Config) (repository.Store, *mongo.Client, error) {
	if cfg.Datastore == config.DatastoreMemory {
		logging.Warn().Msg("using in-memory datastore, data is lost on restart")
		return repository.NewMemoryStore(), nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := database.Connect(ctx, cfg.MongoURI, cfg.ConnectAttempts)
	if err != nil {
		return nil, nil, err
	}
	db := client.Database(cfg.MongoDatabase)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		database.Disconnect(client)
		return nil, nil, err
	}
	logging.Info().Str("database", cfg.MongoDatabase).Msg("MongoDB connected")
	return repository.NewMongoStore(db), client, nil
}

func openUploads(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage == config.StorageCloudinary {
		return storage.NewCloudinary(cfg.CloudinaryURL, "sociomate")
	}
	return storage.NewLocal(cfg.UploadDir)
}
