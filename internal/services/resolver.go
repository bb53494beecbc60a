package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/repos"
	"github.com/opencdb/cdb-backend/internal/types"
)

// ResolverService answers point-in-time queries against the bitemporal IOV
// index: one partition, a flavor fallback chain, a validity coordinate and
// an optional snapshot cutoff in, at most one record out.
type ResolverService interface {
	Resolve(ctx context.Context, partition string, flavors []string, coord types.Coordinate, snapshot int64) (*types.ResolvedPayload, error)
	ResolveBulk(ctx context.Context, requests []types.ResolveRequest) map[string]BulkResult
}

// BulkResult carries one element of a bulk resolution; failures stay local
// to their element and never abort the batch.
type BulkResult struct {
	Payload *types.ResolvedPayload `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Code    string                 `json:"code,omitempty"`
}

type resolverService struct {
	db             *gorm.DB
	log            *logger.Logger
	iovRepo        repos.IOVRepo
	defaultFlavors []string
}

func NewResolverService(db *gorm.DB, baseLog *logger.Logger, iovRepo repos.IOVRepo, defaultFlavors []string) ResolverService {
	return &resolverService{
		db:             db,
		log:            baseLog.With("service", "ResolverService"),
		iovRepo:        iovRepo,
		defaultFlavors: defaultFlavors,
	}
}

func (rs *resolverService) Resolve(ctx context.Context, partition string, flavors []string, coord types.Coordinate, snapshot int64) (*types.ResolvedPayload, error) {
	if !coord.Valid() {
		return nil, apierr.InvalidQuery(fmt.Errorf("neither run+seq nor event time supplied"))
	}
	if len(flavors) == 0 {
		flavors = rs.defaultFlavors
	}
	if len(flavors) == 0 {
		return nil, apierr.InvalidQuery(fmt.Errorf("no flavor supplied and no default configured"))
	}

	for _, flavor := range flavors {
		q := repos.IOVQuery{Flavor: flavor, Coordinate: coord, Snapshot: snapshot}

		entry, err := rs.iovRepo.SelectCurrent(ctx, nil, partition, q)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue // next flavor in the chain
		}
		if err != nil {
			return nil, classifyStoreError("resolve", err)
		}

		resolved := &types.ResolvedPayload{IOVEntry: *entry, EffectiveEt: entry.Et}
		if coord.ByTime() && entry.Et == types.TimeUnset {
			et, err := rs.backfillEndTime(ctx, partition, q, entry)
			if err != nil {
				return nil, err
			}
			resolved.EffectiveEt = et
		}

		rs.log.Debug("Resolved payload",
			"partition", partition,
			"flavor", flavor,
			"id", entry.ID,
			"effective_et", resolved.EffectiveEt,
		)
		return resolved, nil
	}

	return nil, apierr.NotFound(fmt.Errorf("no active entry for coordinate in %s", partition))
}

// backfillEndTime computes the effective end of an open interval from the
// begin time of the next interval in the same (partition, flavor), under
// the same snapshot filter as the primary scan. The stored row keeps its
// open end; only the answer carries the computed bound.
func (rs *resolverService) backfillEndTime(ctx context.Context, partition string, q repos.IOVQuery, entry *types.IOVEntry) (int64, error) {
	nextBt, err := rs.iovRepo.NextBegin(ctx, nil, partition, q, entry.Bt)
	if err != nil {
		return types.TimeUnset, classifyStoreError("resolve end time", err)
	}
	if nextBt == types.TimeUnset {
		return types.TimeUnbounded, nil
	}
	return nextBt, nil
}

// ResolveBulk resolves each request independently; a key maps to either a
// payload or its own structured error.
func (rs *resolverService) ResolveBulk(ctx context.Context, requests []types.ResolveRequest) map[string]BulkResult {
	results := make(map[string]BulkResult, len(requests))
	for i, req := range requests {
		key := req.Key
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}
		payload, err := rs.Resolve(ctx, req.Table, req.Flavors, req.Coordinate, req.Snapshot)
		if err != nil {
			ae := apierr.From(err)
			results[key] = BulkResult{Error: ae.Error(), Code: ae.Code}
			continue
		}
		results[key] = BulkResult{Payload: payload}
	}
	return results
}
