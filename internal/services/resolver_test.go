package services

import (
	"testing"

	"github.com/opencdb/cdb-backend/internal/platform/apierr"
	"github.com/opencdb/cdb-backend/internal/types"
)

func TestResolveByRunNewestWins(t *testing.T) {
	f := newTestFixture(t, "calib")

	// two active entries cover run 100 seq 1; the later-written one
	// supersedes regardless of insertion order
	f.insertEntry(t, "calib", types.IOVEntry{ID: "newer", Run: 100, Seq: 1, Ct: 200})
	f.insertEntry(t, "calib", types.IOVEntry{ID: "older", Run: 100, Seq: 1, Ct: 100})

	got, err := f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{Run: 100, Seq: 1}, 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != "newer" {
		t.Fatalf("resolved id: want=%q got=%q", "newer", got.ID)
	}
}

func TestResolveTombstoneExcluded(t *testing.T) {
	f := newTestFixture(t, "calib")

	f.insertEntry(t, "calib", types.IOVEntry{ID: "retracted", Run: 7, Seq: 0, Ct: 100, Dt: 500})

	_, err := f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{Run: 7}, 0)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("live view: want not_found, got err=%v", err)
	}

	// before the tombstone the entry was visible
	got, err := f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{Run: 7}, 400)
	if err != nil {
		t.Fatalf("Resolve at snapshot 400: %v", err)
	}
	if got.ID != "retracted" {
		t.Fatalf("resolved id: want=%q got=%q", "retracted", got.ID)
	}

	// at or after the tombstone it is gone again
	_, err = f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{Run: 7}, 600)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("snapshot 600: want not_found, got err=%v", err)
	}
}

func TestResolveSnapshotReproducible(t *testing.T) {
	f := newTestFixture(t, "calib")

	f.insertEntry(t, "calib", types.IOVEntry{ID: "first", Run: 42, Seq: 1, Ct: 100})

	before, err := f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{Run: 42, Seq: 1}, 150)
	if err != nil {
		t.Fatalf("Resolve before late write: %v", err)
	}

	// a later correction must not change what snapshot 150 sees
	f.insertEntry(t, "calib", types.IOVEntry{ID: "correction", Run: 42, Seq: 1, Ct: 200})

	after, err := f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{Run: 42, Seq: 1}, 150)
	if err != nil {
		t.Fatalf("Resolve after late write: %v", err)
	}
	if before.ID != after.ID || after.ID != "first" {
		t.Fatalf("snapshot drifted: before=%q after=%q", before.ID, after.ID)
	}

	live, err := f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{Run: 42, Seq: 1}, 0)
	if err != nil {
		t.Fatalf("Resolve live: %v", err)
	}
	if live.ID != "correction" {
		t.Fatalf("live view: want=%q got=%q", "correction", live.ID)
	}
}

func TestResolveOpenIntervalBackfill(t *testing.T) {
	f := newTestFixture(t, "calib")

	f.insertEntry(t, "calib", types.IOVEntry{ID: "iov10", Bt: 10, Et: types.TimeUnset, Ct: 100})
	f.insertEntry(t, "calib", types.IOVEntry{ID: "iov20", Bt: 20, Et: types.TimeUnset, Ct: 200})

	got, err := f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{EventTime: 15}, 0)
	if err != nil {
		t.Fatalf("Resolve at 15: %v", err)
	}
	if got.ID != "iov10" {
		t.Fatalf("resolved id at 15: want=%q got=%q", "iov10", got.ID)
	}
	if got.EffectiveEt != 20 {
		t.Fatalf("effective et at 15: want=20 got=%d", got.EffectiveEt)
	}
	if got.Et != types.TimeUnset {
		t.Fatalf("persisted et must stay open, got=%d", got.Et)
	}

	got, err = f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{EventTime: 25}, 0)
	if err != nil {
		t.Fatalf("Resolve at 25: %v", err)
	}
	if got.ID != "iov20" {
		t.Fatalf("resolved id at 25: want=%q got=%q", "iov20", got.ID)
	}
	if got.EffectiveEt != types.TimeUnbounded {
		t.Fatalf("effective et at 25: want unbounded got=%d", got.EffectiveEt)
	}
}

func TestResolveBackfillHonorsSnapshot(t *testing.T) {
	f := newTestFixture(t, "calib")

	f.insertEntry(t, "calib", types.IOVEntry{ID: "iov10", Bt: 10, Et: types.TimeUnset, Ct: 100})
	// the bounding interval was written after the snapshot cutoff, so
	// at snapshot 150 the first interval is still open-ended
	f.insertEntry(t, "calib", types.IOVEntry{ID: "iov20", Bt: 20, Et: types.TimeUnset, Ct: 200})

	got, err := f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{EventTime: 15}, 150)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.EffectiveEt != types.TimeUnbounded {
		t.Fatalf("effective et under snapshot: want unbounded got=%d", got.EffectiveEt)
	}
}

func TestResolveFlavorFallbackChain(t *testing.T) {
	f := newTestFixture(t, "calib")

	f.insertEntry(t, "calib", types.IOVEntry{ID: "simonly", Flavor: "sim", Run: 5, Ct: 100})

	got, err := f.resolver.Resolve(t.Context(), "calib", []string{"ofl", "sim"}, types.Coordinate{Run: 5}, 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != "simonly" || got.Flavor != "sim" {
		t.Fatalf("fallback result: want id=simonly flavor=sim, got id=%q flavor=%q", got.ID, got.Flavor)
	}

	// a hit on the first flavor short-circuits the chain
	f.insertEntry(t, "calib", types.IOVEntry{ID: "oflhit", Flavor: "ofl", Run: 5, Ct: 50})
	got, err = f.resolver.Resolve(t.Context(), "calib", []string{"ofl", "sim"}, types.Coordinate{Run: 5}, 0)
	if err != nil {
		t.Fatalf("Resolve with ofl present: %v", err)
	}
	if got.ID != "oflhit" {
		t.Fatalf("chain order: want=%q got=%q", "oflhit", got.ID)
	}
}

func TestResolveInvalidCoordinate(t *testing.T) {
	f := newTestFixture(t, "calib")

	_, err := f.resolver.Resolve(t.Context(), "calib", nil, types.Coordinate{}, 0)
	if !apierr.IsCode(err, apierr.CodeInvalidQuery) {
		t.Fatalf("want invalid_query, got err=%v", err)
	}
}

func TestResolveUnknownPartitionIsNotFound(t *testing.T) {
	f := newTestFixture(t, "calib")

	_, err := f.resolver.Resolve(t.Context(), "nosuchpartition", nil, types.Coordinate{Run: 1}, 0)
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("want not_found, got err=%v", err)
	}
}

func TestResolveBadPartitionNameIsMalformed(t *testing.T) {
	f := newTestFixture(t, "calib")

	_, err := f.resolver.Resolve(t.Context(), "bad;name", nil, types.Coordinate{Run: 1}, 0)
	if !apierr.IsCode(err, apierr.CodeMalformedInput) {
		t.Fatalf("want malformed_input, got err=%v", err)
	}
}

func TestResolveBulkIsolatesFailures(t *testing.T) {
	f := newTestFixture(t, "calib")

	f.insertEntry(t, "calib", types.IOVEntry{ID: "hit", Run: 1, Seq: 1, Ct: 100})

	results := f.resolver.ResolveBulk(t.Context(), []types.ResolveRequest{
		{Key: "good", Table: "calib", Coordinate: types.Coordinate{Run: 1, Seq: 1}},
		{Key: "miss", Table: "calib", Coordinate: types.Coordinate{Run: 9}},
		{Key: "bad", Table: "calib", Coordinate: types.Coordinate{}},
	})

	if got := results["good"]; got.Payload == nil || got.Payload.ID != "hit" {
		t.Fatalf("good result: want payload hit, got=%+v", got)
	}
	if got := results["miss"]; got.Code != apierr.CodeNotFound {
		t.Fatalf("miss result code: want=%q got=%q", apierr.CodeNotFound, got.Code)
	}
	if got := results["bad"]; got.Code != apierr.CodeInvalidQuery {
		t.Fatalf("bad result code: want=%q got=%q", apierr.CodeInvalidQuery, got.Code)
	}
}
