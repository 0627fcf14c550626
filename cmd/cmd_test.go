package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"admin-rbac/auth"
	"admin-rbac/database"
	"admin-rbac/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configTemplate = `
log_level: error
jwt_secret: test-secret
database:
  default: local
  connections:
    local:
      driver: sqlite
      dsn: %q
my-app:
  database:
    users_table: my_app_users
    menu_table: my_app_menu
    roles_table: my_app_roles
    permissions_table: my_app_permissions
    role_menu_table: my_app_role_menu
    permission_menu_table: my_app_permission_menu
    role_users_table: my_app_role_users
    role_permissions_table: my_app_role_permissions
  permission:
    enable: true
  menu:
    cache:
      enable: true
      store: array
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(configTemplate, filepath.Join(dir, "admin.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSeedAppCommand(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "admin:seed-app", "MyApp")
	require.NoError(t, err)
	assert.Equal(t, "Done.\n", out)

	t.Run("Seeding again is a no-op", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "admin:seed-app", "my-app")
		require.NoError(t, err)
		assert.Equal(t, "Done.\n", out)
	})

	t.Run("Unknown application", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "admin:seed-app", "Other")
		assert.ErrorIs(t, err, services.ErrConfigName)
		assert.EqualError(t, err, "Config name was wrong.")
		assert.NotContains(t, out, "Done.")
	})

	t.Run("Name is required", func(t *testing.T) {
		_, err := run(t, "--config", cfg, "admin:seed-app")
		assert.Error(t, err)
	})
}

func TestMigrateCommand(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "migrate", "MyApp")
	require.NoError(t, err)
	assert.Equal(t, "Done.\n", out)

	_, err = run(t, "--config", cfg, "migrate", "Other")
	assert.ErrorIs(t, err, services.ErrConfigName)
}

func TestAdminApp(t *testing.T) {
	cfg := writeConfig(t)
	_, err := run(t, "--config", cfg, "admin:seed-app", "MyApp")
	require.NoError(t, err)

	env, err := newEnvironment(cfg)
	require.NoError(t, err)
	defer env.Close()

	_, err = newAdminApp(env, "Other")
	assert.ErrorIs(t, err, services.ErrConfigName)

	a, err := newAdminApp(env, "MyApp")
	require.NoError(t, err)
	assert.Equal(t, "my-app", a.app.Name)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		a.container.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, serve(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)

	docs := serve(httptest.NewRequest(http.MethodGet, "/apidocs.json", nil))
	require.Equal(t, http.StatusOK, docs.Code)
	assert.Contains(t, docs.Body.String(), "/admin/menus/{menu-id}")

	body := fmt.Sprintf(`{"username": %q, "password": %q}`, database.DefaultAdminUsername, database.DefaultAdminPassword)
	req := httptest.NewRequest(http.MethodPost, "/admin/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	login := serve(req)
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())

	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &resp))

	req = httptest.NewRequest(http.MethodGet, "/admin/menus", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	menus := serve(req)
	require.Equal(t, http.StatusOK, menus.Code)
	assert.Contains(t, menus.Body.String(), `"Admin"`)
}
