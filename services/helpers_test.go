package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"admin-rbac/cache"
	"admin-rbac/config"
	"admin-rbac/database"
	"admin-rbac/models"
	"admin-rbac/repositories"
	"admin-rbac/schema"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testApp() *schema.App {
	return &schema.App{
		Name: "admin",
		Tables: schema.Tables{
			Users:           "admin_users",
			Menu:            "admin_menu",
			Roles:           "admin_roles",
			Permissions:     "admin_permissions",
			RoleMenu:        "admin_role_menu",
			PermissionMenu:  "admin_permission_menu",
			RoleUsers:       "admin_role_users",
			RolePermissions: "admin_role_permissions",
		},
		PermissionEnable: true,
		CacheStore:       "array",
	}
}

// setupTestDB opens a private in-memory database with every table of app migrated.
func setupTestDB(t *testing.T, app *schema.App) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db, app))
	return db
}

// recordingStore counts the calls reaching a store.
type recordingStore struct {
	inner   *cache.ArrayStore
	puts    []string
	deletes []string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{inner: cache.NewArrayStore()}
}

func (s *recordingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, key)
}

func (s *recordingStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.puts = append(s.puts, key)
	return s.inner.Put(ctx, key, value, ttl)
}

func (s *recordingStore) Delete(ctx context.Context, key string) error {
	s.deletes = append(s.deletes, key)
	return s.inner.Delete(ctx, key)
}

func (s *recordingStore) has(ctx context.Context, key string) bool {
	_, ok, _ := s.inner.Get(ctx, key)
	return ok
}

type menuFixture struct {
	app   *schema.App
	db    *gorm.DB
	repo  repositories.MenuRepository
	store *recordingStore
	cache *MenuCache
	svc   MenuService
}

func newMenuFixture(t *testing.T, app *schema.App) *menuFixture {
	t.Helper()
	db := setupTestDB(t, app)
	store := newRecordingStore()
	stores := cache.NewManager(config.CacheConfig{}, afero.NewMemMapFs())
	stores.Register(app.CacheStore, store)

	logger := zap.NewNop().Sugar()
	menuCache := NewMenuCache(app, stores, logger)
	repo := repositories.NewMenuRepository(db, app)
	return &menuFixture{
		app:   app,
		db:    db,
		repo:  repo,
		store: store,
		cache: menuCache,
		svc:   NewMenuService(app, repo, menuCache, logger),
	}
}

func titles(nodes []models.Menu) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Title
	}
	return out
}

func zapNop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// assertSameTree compares two menu trees node by node, including whether relations are loaded.
func assertSameTree(t *testing.T, want, got []models.Menu) {
	t.Helper()
	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Roles == nil, got[i].Roles == nil, "roles of %q", want[i].Title)
		assert.Equal(t, want[i].Permissions == nil, got[i].Permissions == nil, "permissions of %q", want[i].Title)
		assertSameTree(t, want[i].Children, got[i].Children)
	}
}
