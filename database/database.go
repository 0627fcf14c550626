package database

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"admin-rbac/config"
	"admin-rbac/models"
	"admin-rbac/schema"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Open connects to a single configured connection.
func Open(conn config.DatabaseConnection, gormLogger logger.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch conn.Driver {
	case "mysql", "":
		dialector = mysql.Open(conn.DSN)
	case "postgres", "pgsql":
		dialector = postgres.Open(conn.DSN)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(conn.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conn.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	// sqlite allows a single writer.
	if dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewLogger returns the gorm logger used for every connection.
func NewLogger(level logger.LogLevel) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  true,
		},
	)
}

// Manager opens named connections lazily and keeps them for reuse.
type Manager struct {
	cfg    config.DatabaseConfig
	logger logger.Interface

	mu    sync.Mutex
	conns map[string]*gorm.DB
}

func NewManager(cfg config.DatabaseConfig, gormLogger logger.Interface) *Manager {
	return &Manager{cfg: cfg, logger: gormLogger, conns: make(map[string]*gorm.DB)}
}

// Add registers an already opened connection under name.
func (m *Manager) Add(name string, db *gorm.DB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[name] = db
}

// Connection returns the connection called name, or the default one when name is empty.
func (m *Manager) Connection(name string) (*gorm.DB, error) {
	if name == "" {
		name = m.cfg.Default
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.conns[name]; ok {
		return db, nil
	}
	conn, ok := m.cfg.Connections[name]
	if !ok {
		return nil, fmt.Errorf("database connection %q is not configured", name)
	}
	db, err := Open(conn, m.logger)
	if err != nil {
		return nil, fmt.Errorf("connection %q: %w", name, err)
	}
	m.conns[name] = db
	return db, nil
}

// For returns the connection of a namespace.
func (m *Manager) For(app *schema.App) (*gorm.DB, error) {
	return m.Connection(app.Connection)
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, db := range m.conns {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("close connection %q: %w", name, err)
		}
		delete(m.conns, name)
	}
	return nil
}

// Migrate creates or updates every table of a namespace.
func Migrate(db *gorm.DB, app *schema.App) error {
	tables := []struct {
		name  string
		model any
	}{
		{app.Tables.Users, &models.User{}},
		{app.Tables.Roles, &models.Role{}},
		{app.Tables.Permissions, &models.Permission{}},
		{app.Tables.Menu, &models.Menu{}},
		{app.Tables.RoleUsers, &models.RoleUser{}},
		{app.Tables.RolePermissions, &models.RolePermission{}},
		{app.Tables.RoleMenu, &models.RoleMenu{}},
		{app.Tables.PermissionMenu, &models.PermissionMenu{}},
	}
	for _, t := range tables {
		if err := db.Table(t.name).AutoMigrate(t.model); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", t.name, err)
		}
	}

	// Unique indexes are named after the real table so namespaces sharing a schema never clash.
	uniques := []struct{ table, column string }{
		{app.Tables.Users, "username"},
		{app.Tables.Roles, "slug"},
		{app.Tables.Permissions, "slug"},
	}
	for _, u := range uniques {
		name := fmt.Sprintf("%s_%s_unique", u.table, u.column)
		if db.Migrator().HasIndex(u.table, name) {
			continue
		}
		err := db.Exec("CREATE UNIQUE INDEX ? ON ? (?)", clause.Column{Name: name}, clause.Table{Name: u.table}, clause.Column{Name: u.column}).Error
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}
	return nil
}
