package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/repos"
	"github.com/opencdb/cdb-backend/internal/types"
)

// Schema operations accepted by SetSchema.
const (
	SchemaOpCreate = "create"
	SchemaOpDrop   = "drop"
)

var (
	tagNameRe = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	idRe      = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)
)

// CatalogService manages the tag hierarchy and the schema documents bound
// to tags. Tags are never deleted, only tombstoned; their partitions may
// outlive them.
type CatalogService interface {
	CreateTag(ctx context.Context, tag *types.Tag) (string, error)
	DeactivateTag(ctx context.Context, id string, dt int64) error
	ListTags(ctx context.Context) ([]*types.TagWithSchema, error)
	SetSchema(ctx context.Context, op, pid string, document []byte, ct int64) (string, error)
	GetSchema(ctx context.Context, pid string) (*types.Schema, error)
}

type catalogService struct {
	db         *gorm.DB
	log        *logger.Logger
	tagRepo    repos.TagRepo
	schemaRepo repos.SchemaRepo
	registry   repos.PartitionRegistry
	identity   IdentityService
}

func NewCatalogService(db *gorm.DB, baseLog *logger.Logger, tagRepo repos.TagRepo, schemaRepo repos.SchemaRepo, registry repos.PartitionRegistry, identity IdentityService) CatalogService {
	return &catalogService{
		db:         db,
		log:        baseLog.With("service", "CatalogService"),
		tagRepo:    tagRepo,
		schemaRepo: schemaRepo,
		registry:   registry,
		identity:   identity,
	}
}

// CreateTag inserts the tag row and, for a tag that names a partition,
// provisions the partition's IOV/Data pair. Provisioning an already
// existing pair is a no-op, so two tags may share a partition.
func (cs *catalogService) CreateTag(ctx context.Context, tag *types.Tag) (string, error) {
	if tag == nil || tag.Name == "" {
		return "", apierr.MalformedInput(fmt.Errorf("tag name is required"))
	}
	if !tagNameRe.MatchString(tag.Name) {
		return "", apierr.MalformedInput(fmt.Errorf("tag name %q has invalid characters", tag.Name))
	}
	if tag.ID == "" {
		tag.ID = cs.identity.NewID()
	}
	if !idRe.MatchString(tag.ID) {
		return "", apierr.MalformedInput(fmt.Errorf("tag id %q has invalid characters", tag.ID))
	}
	if tag.Ct == types.TimeUnset {
		tag.Ct = time.Now().Unix()
	}
	if tag.Tbname != "" {
		// validates the partition charset before anything is written
		if _, err := cs.registry.IOVTable(tag.Tbname); err != nil {
			return "", apierr.MalformedInput(fmt.Errorf("partition %q: %w", tag.Tbname, err))
		}
	}

	if _, err := cs.tagRepo.Create(ctx, nil, tag); err != nil {
		return "", classifyStoreError("create tag", err)
	}

	if tag.Tbname != "" {
		if err := cs.registry.Provision(nil, tag.Tbname); err != nil {
			return "", classifyStoreError("provision partition", err)
		}
	}

	cs.log.Info("Tag created", "id", tag.ID, "name", tag.Name, "partition", tag.Tbname)
	return tag.ID, nil
}

// DeactivateTag stamps the tombstone once; repeating the call leaves the
// first stamp in place and reports success.
func (cs *catalogService) DeactivateTag(ctx context.Context, id string, dt int64) error {
	if id == "" || dt <= 0 {
		return apierr.MalformedInput(fmt.Errorf("tag id and deactivation time are required"))
	}

	updated, err := cs.tagRepo.Deactivate(ctx, nil, id, dt)
	if err != nil {
		return classifyStoreError("deactivate tag", err)
	}
	if !updated {
		tag, err := cs.tagRepo.GetByID(ctx, nil, id)
		if err != nil {
			return classifyStoreError("deactivate tag", err)
		}
		// already tombstoned; idempotent no-op
		cs.log.Debug("Tag already deactivated", "id", id, "dt", tag.Dt)
		return nil
	}

	cs.log.Info("Tag deactivated", "id", id, "dt", dt)
	return nil
}

func (cs *catalogService) ListTags(ctx context.Context) ([]*types.TagWithSchema, error) {
	tags, err := cs.tagRepo.ListWithSchema(ctx, nil)
	if err != nil {
		return nil, classifyStoreError("list tags", err)
	}
	return tags, nil
}

// SetSchema creates or drops the validation document for a tag. Creation
// conflicts while an active document exists; the document is revisable, so
// drop removes rows outright instead of tombstoning.
func (cs *catalogService) SetSchema(ctx context.Context, op, pid string, document []byte, ct int64) (string, error) {
	if pid == "" {
		return "", apierr.MalformedInput(fmt.Errorf("tag id (pid) is required"))
	}

	switch op {
	case SchemaOpCreate:
		if len(document) == 0 {
			return "", apierr.MalformedInput(fmt.Errorf("schema document is required"))
		}
		if _, err := cs.schemaRepo.GetByTag(ctx, nil, pid); err == nil {
			return "", apierr.Conflict(fmt.Errorf("active schema exists for tag %s, drop it first", pid))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", classifyStoreError("set schema", err)
		}
		if ct == types.TimeUnset {
			ct = time.Now().Unix()
		}
		schema := &types.Schema{
			ID:   cs.identity.NewID(),
			Pid:  pid,
			Ct:   ct,
			Dt:   types.TimeUnset,
			Data: document,
		}
		if _, err := cs.schemaRepo.Create(ctx, nil, schema); err != nil {
			return "", classifyStoreError("set schema", err)
		}
		cs.log.Info("Schema created", "id", schema.ID, "pid", pid)
		return schema.ID, nil

	case SchemaOpDrop:
		if err := cs.schemaRepo.DeleteByTag(ctx, nil, pid); err != nil {
			return "", classifyStoreError("drop schema", err)
		}
		cs.log.Info("Schema dropped", "pid", pid)
		return pid, nil

	default:
		return "", apierr.MalformedInput(fmt.Errorf("unknown schema operation %q", op))
	}
}

func (cs *catalogService) GetSchema(ctx context.Context, pid string) (*types.Schema, error) {
	if pid == "" {
		return nil, apierr.MalformedInput(fmt.Errorf("tag id (pid) is required"))
	}
	schema, err := cs.schemaRepo.GetByTag(ctx, nil, pid)
	if err != nil {
		return nil, classifyStoreError("get schema", err)
	}
	return schema, nil
}
