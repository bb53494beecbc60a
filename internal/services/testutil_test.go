package services

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/repos"
	"github.com/opencdb/cdb-backend/internal/types"
)

// newTestStore opens a per-test in-memory sqlite store with the fixed
// tables migrated. The DSN embeds the test name so parallel tests never
// share a database.
func newTestStore(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	if err := db.AutoMigrate(&types.Tag{}, &types.Schema{}); err != nil {
		t.Fatalf("migrate fixed tables: %v", err)
	}
	return db, log
}

// testFixture wires the full repo/service stack over one test store and a
// provisioned partition.
type testFixture struct {
	db       *gorm.DB
	registry repos.PartitionRegistry
	iovRepo  repos.IOVRepo
	dataRepo repos.DataRepo
	tagRepo  repos.TagRepo
	schemas  repos.SchemaRepo
	resolver ResolverService
	payloads PayloadService
	catalog  CatalogService
	admin    AdminService
}

func newTestFixture(t *testing.T, partition string) *testFixture {
	t.Helper()

	db, log := newTestStore(t)
	registry := repos.NewPartitionRegistry(db, log)
	iovRepo := repos.NewIOVRepo(db, registry, log)
	dataRepo := repos.NewDataRepo(db, registry, log)
	tagRepo := repos.NewTagRepo(db, log)
	schemaRepo := repos.NewSchemaRepo(db, log)
	identity := NewIdentityService()

	if partition != "" {
		if err := registry.Provision(nil, partition); err != nil {
			t.Fatalf("provision %s: %v", partition, err)
		}
	}

	return &testFixture{
		db:       db,
		registry: registry,
		iovRepo:  iovRepo,
		dataRepo: dataRepo,
		tagRepo:  tagRepo,
		schemas:  schemaRepo,
		resolver: NewResolverService(db, log, iovRepo, []string{"ofl"}),
		payloads: NewPayloadService(db, log, iovRepo, dataRepo, identity),
		catalog:  NewCatalogService(db, log, tagRepo, schemaRepo, registry, identity),
		admin:    NewAdminService(db, log, registry),
	}
}

// insertEntry writes an IOV row directly so tests control every field,
// including ct.
func (f *testFixture) insertEntry(t *testing.T, partition string, entry types.IOVEntry) {
	t.Helper()
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("entry-%d-%d-%d", entry.Bt, entry.Run, entry.Ct)
	}
	if entry.Flavor == "" {
		entry.Flavor = "ofl"
	}
	if entry.URI == "" {
		entry.URI = types.URISchemeDB + partition
	}
	if _, err := f.iovRepo.Insert(t.Context(), nil, partition, &entry); err != nil {
		t.Fatalf("insert entry %s: %v", entry.ID, err)
	}
}
