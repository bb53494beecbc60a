package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/types"
)

type TagRepo interface {
	Create(ctx context.Context, tx *gorm.DB, tag *types.Tag) (*types.Tag, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Tag, error)
	Deactivate(ctx context.Context, tx *gorm.DB, id string, dt int64) (bool, error)
	ListWithSchema(ctx context.Context, tx *gorm.DB) ([]*types.TagWithSchema, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{db: db, log: baseLog.With("repo", "TagRepo")}
}

func (tr *tagRepo) Create(ctx context.Context, tx *gorm.DB, tag *types.Tag) (*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if err := transaction.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

func (tr *tagRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Tag, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var tag types.Tag
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// Deactivate stamps the tombstone on a still-active tag. The dt guard makes
// a repeat call a no-op so the first stamp is never overwritten.
func (tr *tagRepo) Deactivate(ctx context.Context, tx *gorm.DB, id string, dt int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Tag{}).
		Where("id = ? AND dt = ?", id, types.TimeUnset).
		Update("dt", dt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListWithSchema returns every tag joined with the id of its bound schema,
// empty when the tag has none.
func (tr *tagRepo) ListWithSchema(ctx context.Context, tx *gorm.DB) ([]*types.TagWithSchema, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var results []*types.TagWithSchema
	if err := transaction.WithContext(ctx).
		Table(fixedTagsTable+" AS t").
		Select("t.id, t.pid, t.name, t.tbname, t.ct, t.dt, t.mode, COALESCE(s.id, '') AS schema_id").
		Joins("LEFT JOIN "+fixedSchemas+" s ON t.id = s.pid").
		Order("t.name ASC").
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
