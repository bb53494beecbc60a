package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/types"
	"github.com/opencdb/cdb-backend/internal/utils"
)

// StoreService owns the gorm handle for the conditions store. Postgres is
// the production driver; sqlite covers tests and single-node bootstrap
// deployments. Per-partition IOV/Data tables are provisioned elsewhere
// (repos.PartitionRegistry); only the fixed tag/schema tables migrate here.
type StoreService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoreService(log *logger.Logger) (*StoreService, error) {
	serviceLog := log.With("service", "StoreService")

	driver := utils.GetEnv("CDB_DB_DRIVER", "postgres", log)

	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		path := utils.GetEnv("CDB_SQLITE_PATH", "cdb.sqlite", log)
		dialector = sqlite.Open(path)
	case "postgres":
		host := utils.GetEnv("CDB_PG_HOST", "localhost", log)
		port := utils.GetEnv("CDB_PG_PORT", "5432", log)
		user := utils.GetEnv("CDB_PG_USER", "postgres", log)
		pass := utils.GetEnv("CDB_PG_PASSWORD", "", log)
		name := utils.GetEnv("CDB_PG_NAME", "cdb", log)
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port, name)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown CDB_DB_DRIVER %q", driver)
	}

	serviceLog.Info("Connecting to conditions store...", "driver", driver)
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		serviceLog.Error("Failed to connect to conditions store", "error", err)
		return nil, fmt.Errorf("connect conditions store: %w", err)
	}

	return &StoreService{db: gdb, log: serviceLog}, nil
}

// MigrateFixed creates the tag and schema tables. IOV/Data pairs are
// caller-provisioned per partition and deliberately not migrated here.
func (s *StoreService) MigrateFixed() error {
	s.log.Info("Migrating fixed conditions tables...")
	if err := s.db.AutoMigrate(&types.Tag{}, &types.Schema{}); err != nil {
		s.log.Error("Fixed table migration failed", "error", err)
		return fmt.Errorf("migrate fixed tables: %w", err)
	}
	return nil
}

func (s *StoreService) DB() *gorm.DB {
	return s.db
}
