package repos

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/types"
)

const (
	iovTablePrefix  = "cdb_iov_"
	dataTablePrefix = "cdb_data_"
	fixedTagsTable  = "cdb_tags"
	fixedSchemas    = "cdb_schemas"
)

// partition names are caller-chosen but constrained before they ever reach
// a table-name position in a statement.
var partitionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

var ErrBadPartitionName = fmt.Errorf("partition name must be alphanumeric or underscore")

// PartitionRegistry maps logical partition names onto the IOV/Data table
// pair that backs them and owns provisioning of that pair. Every dynamic
// table name used by IOVRepo/DataRepo goes through this mapping, so the
// name charset is validated exactly once.
type PartitionRegistry interface {
	IOVTable(partition string) (string, error)
	DataTable(partition string) (string, error)
	Provision(tx *gorm.DB, partition string) error
	List() ([]string, error)
	DropAll() error
}

type partitionRegistry struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPartitionRegistry(db *gorm.DB, baseLog *logger.Logger) PartitionRegistry {
	return &partitionRegistry{db: db, log: baseLog.With("repo", "PartitionRegistry")}
}

func (pr *partitionRegistry) IOVTable(partition string) (string, error) {
	if !partitionNameRe.MatchString(partition) {
		return "", ErrBadPartitionName
	}
	return iovTablePrefix + partition, nil
}

func (pr *partitionRegistry) DataTable(partition string) (string, error) {
	if !partitionNameRe.MatchString(partition) {
		return "", ErrBadPartitionName
	}
	return dataTablePrefix + partition, nil
}

// Provision creates the IOV/Data pair for a partition. Re-provisioning an
// existing pair is a no-op: several tags may legitimately share one
// partition.
func (pr *partitionRegistry) Provision(tx *gorm.DB, partition string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	iovTable, err := pr.IOVTable(partition)
	if err != nil {
		return err
	}
	dataTable, err := pr.DataTable(partition)
	if err != nil {
		return err
	}

	if err := transaction.Table(iovTable).AutoMigrate(&types.IOVEntry{}); err != nil {
		return fmt.Errorf("provision %s: %w", iovTable, err)
	}
	if err := transaction.Table(dataTable).AutoMigrate(&types.DataRow{}); err != nil {
		return fmt.Errorf("provision %s: %w", dataTable, err)
	}
	pr.log.Debug("Partition provisioned", "partition", partition)
	return nil
}

// List returns the logical partition names that have an IOV table in the
// store.
func (pr *partitionRegistry) List() ([]string, error) {
	tables, err := pr.db.Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	partitions := []string{}
	for _, t := range tables {
		if strings.HasPrefix(t, iovTablePrefix) {
			partitions = append(partitions, strings.TrimPrefix(t, iovTablePrefix))
		}
	}
	return partitions, nil
}

// DropAll removes every conditions table, fixed and per-partition alike.
// Destructive; reached only through the admin surface.
func (pr *partitionRegistry) DropAll() error {
	tables, err := pr.db.Migrator().GetTables()
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	for _, t := range tables {
		if !strings.HasPrefix(t, "cdb_") {
			continue
		}
		if err := pr.db.Migrator().DropTable(t); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
		pr.log.Warn("Dropped conditions table", "table", t)
	}
	return nil
}
