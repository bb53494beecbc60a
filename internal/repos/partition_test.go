package repos

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/types"
)

func newTestRegistry(t *testing.T) PartitionRegistry {
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
	return NewPartitionRegistry(db, log)
}

func TestPartitionTableNames(t *testing.T) {
	registry := newTestRegistry(t)

	iov, err := registry.IOVTable("tpc_v2")
	if err != nil {
		t.Fatalf("IOVTable: %v", err)
	}
	if iov != "cdb_iov_tpc_v2" {
		t.Fatalf("iov table: want=%q got=%q", "cdb_iov_tpc_v2", iov)
	}

	data, err := registry.DataTable("tpc_v2")
	if err != nil {
		t.Fatalf("DataTable: %v", err)
	}
	if data != "cdb_data_tpc_v2" {
		t.Fatalf("data table: want=%q got=%q", "cdb_data_tpc_v2", data)
	}
}

func TestPartitionNameValidation(t *testing.T) {
	registry := newTestRegistry(t)

	for _, name := range []string{"", "tpc-v2", "tpc v2", "tpc;drop table cdb_tags", "tpc.v2"} {
		if _, err := registry.IOVTable(name); !errors.Is(err, ErrBadPartitionName) {
			t.Fatalf("IOVTable(%q): want ErrBadPartitionName, got %v", name, err)
		}
		if _, err := registry.DataTable(name); !errors.Is(err, ErrBadPartitionName) {
			t.Fatalf("DataTable(%q): want ErrBadPartitionName, got %v", name, err)
		}
		if err := registry.Provision(nil, name); !errors.Is(err, ErrBadPartitionName) {
			t.Fatalf("Provision(%q): want ErrBadPartitionName, got %v", name, err)
		}
	}
}

func TestProvisionIdempotent(t *testing.T) {
	registry := newTestRegistry(t)

	if err := registry.Provision(nil, "emcal"); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := registry.Provision(nil, "emcal"); err != nil {
		t.Fatalf("re-Provision: %v", err)
	}

	names, err := registry.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != "emcal" {
		t.Fatalf("partitions: want=[emcal] got=%v", names)
	}
}

func TestListIgnoresFixedTables(t *testing.T) {
	registry := newTestRegistry(t)

	names, err := registry.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("fresh store partitions: want none got=%v", names)
	}
}

func TestDropAllRemovesPartitions(t *testing.T) {
	registry := newTestRegistry(t)

	for _, p := range []string{"emcal", "tpc"} {
		if err := registry.Provision(nil, p); err != nil {
			t.Fatalf("Provision(%s): %v", p, err)
		}
	}
	if err := registry.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}

	names, err := registry.List()
	if err != nil {
		t.Fatalf("List after drop: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("partitions after drop: want none got=%v", names)
	}
}
