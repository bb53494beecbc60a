package app

import (
	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/repos"
)

type Repos struct {
	Partitions repos.PartitionRegistry
	Tag        repos.TagRepo
	Schema     repos.SchemaRepo
	IOV        repos.IOVRepo
	Data       repos.DataRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	registry := repos.NewPartitionRegistry(db, log)
	return Repos{
		Partitions: registry,
		Tag:        repos.NewTagRepo(db, log),
		Schema:     repos.NewSchemaRepo(db, log),
		IOV:        repos.NewIOVRepo(db, registry, log),
		Data:       repos.NewDataRepo(db, registry, log),
	}
}
