package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"admin-rbac/cache"
	"admin-rbac/database"
	"admin-rbac/repositories"
	"admin-rbac/schema"

	"go.uber.org/zap"
)

// ErrConfigName is reported when the namespace has no users table configured.
var ErrConfigName = errors.New("Config name was wrong.")

// SeedService populates the default rows of a namespace.
type SeedService struct {
	registry *schema.Registry
	conns    *database.Manager
	stores   *cache.Manager
	logger   *zap.SugaredLogger
}

func NewSeedService(registry *schema.Registry, conns *database.Manager, stores *cache.Manager, logger *zap.SugaredLogger) *SeedService {
	return &SeedService{registry: registry, conns: conns, stores: stores, logger: logger.Named("SeedService")}
}

var camelBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

// NamespaceName turns an application name such as "MyApp" into its configuration namespace "my-app".
// Only lower-to-upper case boundaries get a hyphen; underscores, digits and acronyms are kept.
func NamespaceName(name string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(name, "$1-$2"))
}

// SeedApp migrates and seeds the namespace of name when its users table is missing or empty and
// reports whether it did.
// Nothing is touched when the namespace is not configured.
func (s *SeedService) SeedApp(ctx context.Context, name string) (bool, error) {
	ns := NamespaceName(name)

	app, err := s.registry.Get(ns)
	if errors.Is(err, schema.ErrNamespaceNotConfigured) {
		return false, ErrConfigName
	}
	if err != nil {
		return false, err
	}

	db, err := s.conns.For(app)
	if err != nil {
		return false, err
	}
	// A populated namespace is left untouched, schema included.
	if db.WithContext(ctx).Migrator().HasTable(app.Tables.Users) {
		total, err := repositories.NewUserRepository(db, app).Count(ctx)
		if err != nil {
			return false, err
		}
		if total > 0 {
			s.logger.Infow("Namespace already seeded", "app", ns, "users", total)
			return false, nil
		}
	}

	if err := database.Migrate(db, app); err != nil {
		return false, err
	}

	if err := database.SeedTables(ctx, db, app); err != nil {
		return false, fmt.Errorf("seed %s: %w", ns, err)
	}
	if err := NewMenuCache(app, s.stores, s.logger).FlushCache(ctx); err != nil {
		return false, err
	}
	s.logger.Infow("Seeded namespace", "app", ns)
	return true, nil
}
