package app

import (
	"strings"

	"github.com/opencdb/cdb-backend/internal/platform/logger"
	"github.com/opencdb/cdb-backend/internal/services"
	"github.com/opencdb/cdb-backend/internal/utils"
)

type Config struct {
	ListenAddr     string
	AllowOrigins   []string
	DefaultFlavors []string
	Users          map[string]services.UserCred
}

// LoadConfig reads the process configuration once; the struct travels by
// value from here on. CDB_AUTH_USERS is a comma-separated list of
// name:secret:access triples, access one of get/set/admin.
func LoadConfig(log *logger.Logger) Config {
	listenAddr := utils.GetEnv("CDB_LISTEN_ADDR", ":8080", log)
	origins := splitList(utils.GetEnv("CDB_ALLOW_ORIGINS", "http://localhost:3000", log))
	flavors := splitList(utils.GetEnv("CDB_FLAVORS", "ofl", log))
	users := parseUsers(utils.GetEnv("CDB_AUTH_USERS", "", log), log)

	return Config{
		ListenAddr:     listenAddr,
		AllowOrigins:   origins,
		DefaultFlavors: flavors,
		Users:          users,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseUsers(s string, log *logger.Logger) map[string]services.UserCred {
	users := map[string]services.UserCred{}
	for _, triple := range splitList(s) {
		fields := strings.SplitN(triple, ":", 3)
		if len(fields) != 3 {
			log.Warn("Skipping malformed auth user entry")
			continue
		}
		name, secret, access := fields[0], fields[1], fields[2]
		switch access {
		case services.AccessGet, services.AccessSet, services.AccessAdmin:
			users[name] = services.UserCred{Secret: secret, Access: access}
		default:
			log.Warn("Skipping auth user with unknown access level", "user", name, "access", access)
		}
	}
	if len(users) == 0 {
		log.Warn("No auth users configured; every request will be rejected")
	}
	return users
}
