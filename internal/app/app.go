package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/db"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	store, err := db.NewStoreService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init store: %w", err)
	}
	if err := store.MigrateFixed(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("store migrate: %w", err)
	}
	theDB := store.DB()

	repoSet := wireRepos(theDB, log)
	serviceSet := wireServices(theDB, log, cfg, repoSet)
	handlerSet := wireHandlers(log, serviceSet)
	middlewareSet := wireMiddleware(log, serviceSet)
	router := wireRouter(cfg, handlerSet, middlewareSet)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    repoSet,
		Services: serviceSet,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(a.Cfg.ListenAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
