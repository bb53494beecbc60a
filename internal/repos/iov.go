package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/types"
)

// IOVQuery is the resolver's predicate set in data form: the fragments are
// composed as parameterized clauses, never as SQL text, so the selection
// rule stays testable against any store the registry can reach.
type IOVQuery struct {
	Flavor     string
	Coordinate types.Coordinate
	Snapshot   int64
}

// IOVRepo is the bitemporal index over one partition's cdb_iov_* table. All
// table names come from the registry; callers pass the logical partition
// name only.
type IOVRepo interface {
	Insert(ctx context.Context, tx *gorm.DB, partition string, entry *types.IOVEntry) (*types.IOVEntry, error)
	SelectCurrent(ctx context.Context, tx *gorm.DB, partition string, q IOVQuery) (*types.IOVEntry, error)
	NextBegin(ctx context.Context, tx *gorm.DB, partition string, q IOVQuery, afterBt int64) (int64, error)
	Deactivate(ctx context.Context, tx *gorm.DB, partition string, id string, dt int64) (bool, error)
}

type iovRepo struct {
	db       *gorm.DB
	registry PartitionRegistry
	log      *logger.Logger
}

func NewIOVRepo(db *gorm.DB, registry PartitionRegistry, baseLog *logger.Logger) IOVRepo {
	return &iovRepo{db: db, registry: registry, log: baseLog.With("repo", "IOVRepo")}
}

func (ir *iovRepo) Insert(ctx context.Context, tx *gorm.DB, partition string, entry *types.IOVEntry) (*types.IOVEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	table, err := ir.registry.IOVTable(partition)
	if err != nil {
		return nil, err
	}
	if err := transaction.WithContext(ctx).Table(table).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// SelectCurrent picks the single record in effect for the query coordinate:
// coordinate predicate, then transaction-time filter, newest ct first.
// gorm.ErrRecordNotFound when nothing survives.
func (ir *iovRepo) SelectCurrent(ctx context.Context, tx *gorm.DB, partition string, q IOVQuery) (*types.IOVEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	table, err := ir.registry.IOVTable(partition)
	if err != nil {
		return nil, err
	}

	scope := transaction.WithContext(ctx).Table(table).
		Where("flavor = ?", q.Flavor)
	if q.Coordinate.ByRun() {
		scope = scope.Where("run = ? AND seq = ?", q.Coordinate.Run, q.Coordinate.Seq)
	} else {
		scope = scope.Where("bt <= ? AND (et = ? OR et > ?)",
			q.Coordinate.EventTime, types.TimeUnset, q.Coordinate.EventTime)
	}
	scope = applySnapshot(scope, q.Snapshot)

	var entry types.IOVEntry
	if err := scope.Order("ct DESC").Limit(1).Take(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// NextBegin finds the effective end of an open interval: the earliest begin
// time in the same (partition, flavor) that starts at or after the query
// time and strictly after the resolved entry's own begin, under the same
// snapshot filter as the primary scan. TimeUnset when no later interval
// exists.
func (ir *iovRepo) NextBegin(ctx context.Context, tx *gorm.DB, partition string, q IOVQuery, afterBt int64) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	table, err := ir.registry.IOVTable(partition)
	if err != nil {
		return types.TimeUnset, err
	}

	scope := transaction.WithContext(ctx).Table(table).
		Where("flavor = ?", q.Flavor).
		Where("bt >= ? AND bt > ?", q.Coordinate.EventTime, afterBt)
	scope = applySnapshot(scope, q.Snapshot)

	var row struct {
		Bt int64
	}
	err = scope.Select("bt").Order("bt ASC").Limit(1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.TimeUnset, nil
	}
	if err != nil {
		return types.TimeUnset, err
	}
	return row.Bt, nil
}

// Deactivate stamps the tombstone; the dt guard keeps the operation
// idempotent by id.
func (ir *iovRepo) Deactivate(ctx context.Context, tx *gorm.DB, partition string, id string, dt int64) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}

	table, err := ir.registry.IOVTable(partition)
	if err != nil {
		return false, err
	}

	res := transaction.WithContext(ctx).Table(table).
		Where("id = ? AND dt = ?", id, types.TimeUnset).
		Update("dt", dt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// applySnapshot adds the transaction-time filter. With a snapshot the scan
// reconstructs what a caller at that moment would have seen; without one
// only live (never-deactivated) rows qualify.
func applySnapshot(scope *gorm.DB, snapshot int64) *gorm.DB {
	if snapshot > 0 {
		return scope.
			Where("ct <= ?", snapshot).
			Where("dt = ? OR dt > ?", types.TimeUnset, snapshot)
	}
	return scope.Where("dt = ?", types.TimeUnset)
}
