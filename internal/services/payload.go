package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/repos"
	"github.com/opencdb/cdb-backend/internal/types"
)

// PayloadService is the write side of the resolver's domain: immutable IOV
// inserts with their paired data rows, tombstone deactivation, and raw
// payload download for db:// URIs.
type PayloadService interface {
	SetPayload(ctx context.Context, partition string, entry *types.IOVEntry, data []byte) (string, error)
	DeactivatePayload(ctx context.Context, partition, id string, dt int64) error
	DownloadData(ctx context.Context, partition, id string) (*types.DataRow, error)
}

type payloadService struct {
	db       *gorm.DB
	log      *logger.Logger
	iovRepo  repos.IOVRepo
	dataRepo repos.DataRepo
	identity IdentityService
}

func NewPayloadService(db *gorm.DB, baseLog *logger.Logger, iovRepo repos.IOVRepo, dataRepo repos.DataRepo, identity IdentityService) PayloadService {
	return &payloadService{
		db:       db,
		log:      baseLog.With("service", "PayloadService"),
		iovRepo:  iovRepo,
		dataRepo: dataRepo,
		identity: identity,
	}
}

// SetPayload writes the IOV entry and, for db:// URIs with payload bytes,
// the paired data row as one transaction: both rows land or neither is
// ever observable.
func (ps *payloadService) SetPayload(ctx context.Context, partition string, entry *types.IOVEntry, data []byte) (string, error) {
	if entry == nil {
		return "", apierr.MalformedInput(fmt.Errorf("no entry supplied"))
	}
	if entry.URI == "" && len(data) == 0 {
		return "", apierr.MalformedInput(fmt.Errorf("no URI and no data"))
	}
	coord := types.Coordinate{Run: entry.Run, Seq: entry.Seq, EventTime: entry.Bt}
	if !coord.Valid() {
		return "", apierr.MalformedInput(fmt.Errorf("entry needs a run+seq or a begin time"))
	}
	if types.IsSet(entry.Bt) && types.IsSet(entry.Et) && entry.Bt >= entry.Et {
		return "", apierr.MalformedInput(fmt.Errorf("begin time %d is not before end time %d", entry.Bt, entry.Et))
	}

	if entry.URI == "" {
		entry.URI = types.URISchemeDB + partition
	}
	if entry.ID == "" {
		entry.ID = ps.identity.NewID()
	}
	if entry.Ct == types.TimeUnset {
		entry.Ct = time.Now().Unix()
	}

	err := ps.db.Transaction(func(tx *gorm.DB) error {
		if _, err := ps.iovRepo.Insert(ctx, tx, partition, entry); err != nil {
			return err
		}
		if entry.StoredInDB() && len(data) > 0 {
			row := &types.DataRow{
				ID:   entry.ID,
				Pid:  entry.Pid,
				Ct:   entry.Ct,
				Dt:   types.TimeUnset,
				Data: data,
				Size: int64(len(data)),
			}
			if _, err := ps.dataRepo.Insert(ctx, tx, partition, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", classifyStoreError("set payload", err)
	}

	ps.log.Info("Payload stored",
		"partition", partition,
		"id", entry.ID,
		"flavor", entry.Flavor,
		"uri", entry.URI,
		"size", len(data),
	)
	return entry.ID, nil
}

// DeactivatePayload stamps the tombstone on an entry. Idempotent by id: a
// repeat call, or an unknown id, changes nothing and reports success, which
// matches the retract-a-mistake semantics of the write path.
func (ps *payloadService) DeactivatePayload(ctx context.Context, partition, id string, dt int64) error {
	if partition == "" || id == "" || dt <= 0 {
		return apierr.MalformedInput(fmt.Errorf("partition, id and deactivation time are required"))
	}

	updated, err := ps.iovRepo.Deactivate(ctx, nil, partition, id, dt)
	if err != nil {
		return classifyStoreError("deactivate payload", err)
	}
	if !updated {
		ps.log.Debug("Payload already deactivated or unknown", "partition", partition, "id", id)
		return nil
	}

	ps.log.Info("Payload deactivated", "partition", partition, "id", id, "dt", dt)
	return nil
}

func (ps *payloadService) DownloadData(ctx context.Context, partition, id string) (*types.DataRow, error) {
	if partition == "" || id == "" {
		return nil, apierr.MalformedInput(fmt.Errorf("partition and id are required"))
	}
	row, err := ps.dataRepo.GetByID(ctx, nil, partition, id)
	if err != nil {
		return nil, classifyStoreError("download data", err)
	}
	return row, nil
}
