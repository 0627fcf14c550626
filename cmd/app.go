package cmd

import (
	"errors"
	"net/http"

	"admin-rbac/auth"
	"admin-rbac/controllers"
	"admin-rbac/repositories"
	"admin-rbac/schema"
	"admin-rbac/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

// adminApp holds everything serving one namespace.
type adminApp struct {
	app       *schema.App
	menus     services.MenuService
	roles     services.RoleService
	tokens    *auth.TokenManager
	container *restful.Container
}

func newAdminApp(env *environment, name string) (*adminApp, error) {
	app, err := env.registry.Get(services.NamespaceName(name))
	if errors.Is(err, schema.ErrNamespaceNotConfigured) {
		return nil, services.ErrConfigName
	}
	if err != nil {
		return nil, err
	}

	db, err := env.conns.For(app)
	if err != nil {
		return nil, err
	}

	logger := env.logger.Sugar().With("app", app.Name)
	users := repositories.NewUserRepository(db, app)
	roleRepo := repositories.NewRoleRepository(db, app)
	permissions := repositories.NewPermissionRepository(db, app)
	menuRepo := repositories.NewMenuRepository(db, app)

	menuCache := services.NewMenuCache(app, env.stores, logger)
	menus := services.NewMenuService(app, menuRepo, menuCache, logger)
	roles := services.NewRoleService(app, roleRepo, permissions, menuCache, logger)

	tokens := auth.NewTokenManager([]byte(env.cfg.JwtSecret), env.cfg.ServiceName)
	authFilter := auth.AuthFilter(tokens, app.Name)
	authz := auth.NewAuthorizer(app, users, roleRepo, permissions)

	ws := new(restful.WebService)
	ws.Path("/admin").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	auth.NewLoginHandler(app.Name, users, tokens).RegisterRoutes(ws)
	controllers.NewMenuController(menus, authFilter, authz).RegisterRoutes(ws)
	controllers.NewRoleController(roles, authFilter, authz).RegisterRoutes(ws)

	container := restful.NewContainer()
	container.Add(ws)
	container.Add(healthWebService())
	container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
	}))

	return &adminApp{
		app:       app,
		menus:     menus,
		roles:     roles,
		tokens:    tokens,
		container: container,
	}, nil
}

func healthWebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/health").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("").To(func(_ *restful.Request, response *restful.Response) {
		_ = response.WriteHeaderAndJson(http.StatusOK, map[string]string{"status": "ok"}, restful.MIME_JSON)
	}).Doc("Liveness probe used by the service registry"))
	return ws
}
