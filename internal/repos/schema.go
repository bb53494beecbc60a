package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/types"
)

type SchemaRepo interface {
	Create(ctx context.Context, tx *gorm.DB, schema *types.Schema) (*types.Schema, error)
	GetByTag(ctx context.Context, tx *gorm.DB, pid string) (*types.Schema, error)
	DeleteByTag(ctx context.Context, tx *gorm.DB, pid string) error
}

type schemaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSchemaRepo(db *gorm.DB, baseLog *logger.Logger) SchemaRepo {
	return &schemaRepo{db: db, log: baseLog.With("repo", "SchemaRepo")}
}

func (sr *schemaRepo) Create(ctx context.Context, tx *gorm.DB, schema *types.Schema) (*types.Schema, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(schema).Error; err != nil {
		return nil, err
	}
	return schema, nil
}

func (sr *schemaRepo) GetByTag(ctx context.Context, tx *gorm.DB, pid string) (*types.Schema, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var schema types.Schema
	if err := transaction.WithContext(ctx).
		Where("pid = ?", pid).
		First(&schema).Error; err != nil {
		return nil, err
	}
	return &schema, nil
}

// DeleteByTag hard-deletes the schema rows for a tag. Schemas are revisable
// documents rather than historical facts, so no tombstone is kept.
func (sr *schemaRepo) DeleteByTag(ctx context.Context, tx *gorm.DB, pid string) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Where("pid = ?", pid).
		Delete(&types.Schema{}).Error
}
