package app

import (
	"github.com/gin-gonic/gin"

	"github.com/guttosm/quantlevels/config"
	"github.com/guttosm/quantlevels/internal/api"
	"github.com/guttosm/quantlevels/internal/service"
)

// InitializeApp sets up the read API and returns a configured Gin router,
// a cleanup function for graceful shutdown, and any initialization error.
//
// Responsibilities:
//   - Opens the configured store (Postgres or SQLite).
//   - Builds repository -> service -> handler -> router.
//   - Registers health and readiness probes.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	store, err := OpenStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	svc := service.NewLevelService(store.Repository(cfg))
	handler := api.NewHandler(svc, cfg.Levels.Instrument)
	router := api.NewRouter(handler)

	api.NewHealthHandler(store.DB.PingContext).Register(router)

	return router, store.Close, nil
}
