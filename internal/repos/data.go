package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/types"
)

// DataRepo stores the raw payload bytes for db:// URIs in the partition's
// cdb_data_* table, keyed by the owning IOV entry's id.
type DataRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, partition string, row *types.DataRow) (*types.DataRow, error)
	GetByID(ctx context.Context, tx *gorm.DB, partition string, id string) (*types.DataRow, error)
}

type dataRepo struct {
	db       *gorm.DB
	registry PartitionRegistry
	log      *logger.Logger
}

func NewDataRepo(db *gorm.DB, registry PartitionRegistry, baseLog *logger.Logger) DataRepo {
	return &dataRepo{db: db, registry: registry, log: baseLog.With("repo", "DataRepo")}
}

func (dr *dataRepo) Insert(ctx context.Context, tx *gorm.DB, partition string, row *types.DataRow) (*types.DataRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	table, err := dr.registry.DataTable(partition)
	if err != nil {
		return nil, err
	}
	if err := transaction.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (dr *dataRepo) GetByID(ctx context.Context, tx *gorm.DB, partition string, id string) (*types.DataRow, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	table, err := dr.registry.DataTable(partition)
	if err != nil {
		return nil, err
	}

	var row types.DataRow
	if err := transaction.WithContext(ctx).Table(table).
		Where("id = ?", id).
		Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
