package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"catering-fees/app/controller"
	"catering-fees/app/router"
	"catering-fees/db"
	"catering-fees/pricing"
	"catering-fees/repository"
	"catering-fees/service"
)

// openKeyValueStore builds the storage backend named in cfg. The returned
// *sql.DB is nil for backends that don't use one.
func openKeyValueStore(ctx context.Context, cfg Config) (repository.KeyValueStoreInterface, *sql.DB, error) {
	switch cfg.StoreBackend {
	case BackendMemory:
		log.Printf("⚠️  Using in-memory fee store, changes are lost on restart")
		return repository.NewMemoryKeyValueStore(), nil, nil

	case BackendSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		kv, err := repository.NewSQLKeyValueStore(ctx, conn, repository.DialectSQLite)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return kv, conn, nil

	case BackendPostgres:
		dsn, err := db.PostgresDSN()
		if err != nil {
			return nil, nil, err
		}
		conn, err := db.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		kv, err := repository.NewSQLKeyValueStore(ctx, conn, repository.DialectPostgres)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		return kv, conn, nil

	case BackendDrive:
		if cfg.CredentialsPath == "" {
			return nil, nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS environment variable is not set")
		}
		kv, err := repository.NewDriveKeyValueStore(ctx, cfg.CredentialsPath, cfg.DriveFolderID)
		if err != nil {
			return nil, nil, err
		}
		return kv, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown FEES_STORE_BACKEND %q (use memory, sqlite, postgres or drive)", cfg.StoreBackend)
}

// NewControllers wires the repository, services and controllers over kv
func NewControllers(kv repository.KeyValueStoreInterface, cfg Config) *router.Controllers {
	repo := repository.NewFeeStoreRepository(kv, cfg.StoreKey)
	engine := pricing.NewEngine(repo)

	return &router.Controllers{
		Preview:  controller.NewPreviewController(engine),
		FeeAdmin: controller.NewFeeAdminController(service.NewDraftSet(repo), service.NewFeeRuleService(repo)),
		Schedule: controller.NewScheduleController(service.NewScheduleService(repo, cfg.BaseURL)),
	}
}

// Initialize opens the fee store and registers the routes on mux.
// The returned func releases the store's resources.
func Initialize(ctx context.Context, cfg Config, mux *http.ServeMux) (func(), error) {
	kv, conn, err := openKeyValueStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fee store: %w", err)
	}
	log.Printf("✅ Fee store backend: %s", cfg.StoreBackend)

	router.SetupRoutes(mux, NewControllers(kv, cfg))

	return func() {
		if conn != nil {
			conn.Close()
		}
	}, nil
}
