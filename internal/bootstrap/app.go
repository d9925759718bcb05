// Package bootstrap builds the application object graph from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"medicloud-backend/internal/accounts"
	"medicloud-backend/internal/audit"
	"medicloud-backend/internal/server"
	"medicloud-backend/internal/session"
	"medicloud-backend/internal/shared/auth"
	"medicloud-backend/internal/shared/config"
	"medicloud-backend/internal/shared/storage/db"
	"medicloud-backend/internal/shared/storage/object"
	"medicloud-backend/internal/shared/storage/object/local"
	"medicloud-backend/internal/shared/storage/object/s3"
	"medicloud-backend/internal/shared/telemetry"
	"medicloud-backend/internal/vault"
)

// App is the assembled application.
type App struct {
	Engine   *gin.Engine
	Recorder *audit.Recorder

	close []func() error
}

// New wires configuration into a runnable App.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.MigrateOnBoot {
		if err := db.RunMigrations(ctx, database); err != nil {
			database.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		database.Close()
		return nil, err
	}

	auditRepo := &audit.PGRepo{DB: database}
	recorder := audit.NewRecorder(auditRepo)

	accountsRepo := &accounts.PGRepo{DB: database}
	vaultRepo := &vault.PGRepo{DB: database}

	vaultSvc := vault.NewService(vaultRepo, store, cfg.SignedURLTTL)
	accountsSvc := accounts.NewService(accountsRepo)
	sessionSvc := session.NewService(accountsRepo, signer, recorder)

	engine := server.NewRouter(server.Deps{
		Config:   cfg,
		Signer:   signer,
		Recorder: recorder,
		Session:  session.NewHandler(sessionSvc),
		Vault:    vault.NewHandler(vaultSvc, recorder),
		Accounts: accounts.NewHandler(accountsSvc, recorder),
		Audit:    audit.NewHandler(auditRepo, recorder),
	})

	telemetry.Info("app.ready", map[string]any{
		"env":   cfg.Env,
		"store": cfg.ObjectStoreType,
	})

	return &App{
		Engine:   engine,
		Recorder: recorder,
		close:    []func() error{database.Close},
	}, nil
}

// Close drains in-flight audit writes and releases resources.
func (a *App) Close() {
	a.Recorder.Close()
	for _, fn := range a.close {
		if err := fn(); err != nil {
			telemetry.Error("app.close", map[string]any{"error": err.Error()})
		}
	}
}

func newObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("init s3 store: %w", err)
		}
		return store, nil
	default:
		return local.New(cfg.LocalStoreDir), nil
	}
}
