package app

import (
	"gorm.io/gorm"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/services"
)

type Services struct {
	Auth     services.AuthService
	Identity services.IdentityService
	Catalog  services.CatalogService
	Resolver services.ResolverService
	Payload  services.PayloadService
	Admin    services.AdminService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repoSet Repos) Services {
	log.Info("Wiring services...")
	identity := services.NewIdentityService()
	return Services{
		Auth:     services.NewAuthService(log, cfg.Users),
		Identity: identity,
		Catalog:  services.NewCatalogService(db, log, repoSet.Tag, repoSet.Schema, repoSet.Partitions, identity),
		Resolver: services.NewResolverService(db, log, repoSet.IOV, cfg.DefaultFlavors),
		Payload:  services.NewPayloadService(db, log, repoSet.IOV, repoSet.Data, identity),
		Admin:    services.NewAdminService(db, log, repoSet.Partitions),
	}
}
