// Package schema resolves an application namespace into the table names, connection and
// feature flags its Role and Menu entities operate against.
package schema

import (
	"errors"
	"fmt"
	"sync"

	"admin-rbac/config"
)

var (
	// ErrNamespaceNotConfigured is returned when "{ns}.database.users_table" is unset.
	ErrNamespaceNotConfigured = errors.New("namespace is not configured")
	// ErrIncompleteSchema is returned when a required table name is missing.
	ErrIncompleteSchema = errors.New("incomplete namespace schema")
)

const (
	DefaultCacheStore       = "file"
	DefaultPermissionsTable = "admin_permissions"
)

// Tables holds every table a namespace reads and writes.
type Tables struct {
	Users           string
	Menu            string
	Roles           string
	Permissions     string
	RoleMenu        string
	PermissionMenu  string
	RoleUsers       string
	RolePermissions string
}

// Models keeps the configured model names. They are informational: the Go entity types are fixed.
type Models struct {
	Users       string
	Roles       string
	Permissions string
	Menu        string
}

// App is a resolved namespace. It is passed explicitly to every repository and service.
type App struct {
	Name       string
	Connection string // empty means the default connection
	Tables     Tables
	Models     Models

	BindPermission   bool
	PermissionEnable bool
	CacheEnable      bool
	CacheStore       string
}

// WithPermission reports whether menus are bound to permissions.
func (a *App) WithPermission() bool {
	return a.BindPermission && a.PermissionEnable
}

// WithRole reports whether menus are bound to roles.
func (a *App) WithRole() bool {
	return a.PermissionEnable
}

func (a *App) CacheEnabled() bool {
	return a.CacheEnable
}

// Resolve reads every key of namespace ns once.
func Resolve(r *config.Resolver, ns string) (*App, error) {
	if r.String(ns, "database.users_table") == "" {
		return nil, fmt.Errorf("%w: %s", ErrNamespaceNotConfigured, ns)
	}

	app := &App{
		Name:       ns,
		Connection: r.StringOr(ns, "database.connection", r.Global("database.default")),
		Tables: Tables{
			Users:           r.String(ns, "database.users_table"),
			Menu:            r.String(ns, "database.menu_table"),
			Roles:           r.String(ns, "database.roles_table"),
			Permissions:     r.StringOr(ns, "database.permissions_table", DefaultPermissionsTable),
			RoleMenu:        r.String(ns, "database.role_menu_table"),
			PermissionMenu:  r.String(ns, "database.permission_menu_table"),
			RoleUsers:       r.String(ns, "database.role_users_table"),
			RolePermissions: r.String(ns, "database.role_permissions_table"),
		},
		Models: Models{
			Users:       r.String(ns, "database.users_model"),
			Roles:       r.String(ns, "database.roles_model"),
			Permissions: r.String(ns, "database.permissions_model"),
			Menu:        r.String(ns, "database.menu_model"),
		},
		BindPermission:   r.Bool(ns, "menu.bind_permission"),
		PermissionEnable: r.Bool(ns, "permission.enable"),
		CacheEnable:      r.Bool(ns, "menu.cache.enable"),
		CacheStore:       r.StringOr(ns, "menu.cache.store", DefaultCacheStore),
	}

	required := map[string]string{
		"menu_table":             app.Tables.Menu,
		"roles_table":            app.Tables.Roles,
		"role_menu_table":        app.Tables.RoleMenu,
		"permission_menu_table":  app.Tables.PermissionMenu,
		"role_users_table":       app.Tables.RoleUsers,
		"role_permissions_table": app.Tables.RolePermissions,
	}
	for key, table := range required {
		if table == "" {
			return nil, fmt.Errorf("%w: %s.database.%s is not set", ErrIncompleteSchema, ns, key)
		}
	}
	return app, nil
}

// Registry memoizes resolved namespaces.
type Registry struct {
	resolver *config.Resolver

	mu   sync.Mutex
	apps map[string]*App
}

func NewRegistry(r *config.Resolver) *Registry {
	return &Registry{resolver: r, apps: make(map[string]*App)}
}

func (reg *Registry) Get(ns string) (*App, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if app, ok := reg.apps[ns]; ok {
		return app, nil
	}
	app, err := Resolve(reg.resolver, ns)
	if err != nil {
		return nil, err
	}
	reg.apps[ns] = app
	return app, nil
}
