package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/repos"
	"github.com/opencdb/cdb-backend/internal/types"
)

// AdminService covers the bootstrap/teardown surface: fixed-table
// provisioning, partition listing, and the destructive drop-all used by
// test environments.
type AdminService interface {
	ListPartitions(ctx context.Context) ([]string, error)
	ProvisionFixed(ctx context.Context) error
	DropAll(ctx context.Context) error
}

type adminService struct {
	db       *gorm.DB
	log      *logger.Logger
	registry repos.PartitionRegistry
}

func NewAdminService(db *gorm.DB, baseLog *logger.Logger, registry repos.PartitionRegistry) AdminService {
	return &adminService{
		db:       db,
		log:      baseLog.With("service", "AdminService"),
		registry: registry,
	}
}

func (as *adminService) ListPartitions(ctx context.Context) ([]string, error) {
	partitions, err := as.registry.List()
	if err != nil {
		return nil, classifyStoreError("list partitions", err)
	}
	return partitions, nil
}

func (as *adminService) ProvisionFixed(ctx context.Context) error {
	if err := as.db.WithContext(ctx).AutoMigrate(&types.Tag{}, &types.Schema{}); err != nil {
		return classifyStoreError("provision fixed tables", err)
	}
	as.log.Info("Fixed conditions tables provisioned")
	return nil
}

func (as *adminService) DropAll(ctx context.Context) error {
	if err := as.registry.DropAll(); err != nil {
		return apierr.StoreUnavailable(fmt.Errorf("drop all: %w", err))
	}
	as.log.Warn("All conditions tables dropped")
	return nil
}
