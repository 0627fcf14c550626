package controllers

import (
	"net/http"

	"admin-rbac/auth"
	"admin-rbac/models"
	"admin-rbac/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

// MenuPermission guards every menu write.
const MenuPermission = "menu"

type MenuController struct {
	menuService services.MenuService
	authFilter  restful.FilterFunction
	canManage   restful.FilterFunction
}

func NewMenuController(menuService services.MenuService, authFilter restful.FilterFunction, authz *auth.Authorizer) *MenuController {
	return &MenuController{
		menuService: menuService,
		authFilter:  authFilter,
		canManage:   auth.PermissionFilter(authz, MenuPermission),
	}
}

// MenuInput is the request body of menu create and update.
type MenuInput struct {
	ParentID    uint   `json:"parent_id"`
	Order       int    `json:"order"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	URI         string `json:"uri"`
	Extension   string `json:"extension"`
	Show        *bool  `json:"show"` // defaults to true on create
	Roles       []uint `json:"roles"`
	Permissions []uint `json:"permissions"`
}

// RegisterRoutes sets up the menu routes on ws.
func (ctl *MenuController) RegisterRoutes(ws *restful.WebService) {
	tags := []string{"menus"}

	ws.Route(ws.GET("/menus").Filter(ctl.authFilter).To(ctl.treeHandler).
		Doc("Get the menu tree").
		Param(ws.QueryParameter("force", "Bypass the menu cache").DataType("boolean").DefaultValue("false")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]models.Menu{}).
		Returns(http.StatusOK, "Menu tree", []models.Menu{}).
		Returns(http.StatusUnauthorized, "Unauthorized", nil))

	ws.Route(ws.GET("/menus/options").Filter(ctl.authFilter).To(ctl.optionsHandler).
		Doc("List menus flattened for a parent selector").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]services.Option{}).
		Returns(http.StatusOK, "Menu options", []services.Option{}))

	ws.Route(ws.POST("/menus").Filter(ctl.authFilter).Filter(ctl.canManage).To(ctl.createHandler).
		Doc("Create a menu").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(MenuInput{}).
		Returns(http.StatusCreated, "Menu created", models.Menu{}).
		Returns(http.StatusBadRequest, "Invalid request body", nil).
		Returns(http.StatusForbidden, "Forbidden", nil))

	ws.Route(ws.PUT("/menus/order").Filter(ctl.authFilter).Filter(ctl.canManage).To(ctl.orderHandler).
		Doc("Save the nested menu order").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads([]services.OrderNode{}).
		Returns(http.StatusOK, "Order saved", nil).
		Returns(http.StatusBadRequest, "Invalid order", nil))

	ws.Route(ws.PUT("/menus/{menu-id}").Filter(ctl.authFilter).Filter(ctl.canManage).To(ctl.updateHandler).
		Doc("Update a menu").
		Param(ws.PathParameter("menu-id", "Identifier of the menu").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(MenuInput{}).
		Returns(http.StatusOK, "Menu updated", models.Menu{}).
		Returns(http.StatusBadRequest, "Invalid request body", nil).
		Returns(http.StatusNotFound, "Menu not found", nil))

	ws.Route(ws.DELETE("/menus/{menu-id}").Filter(ctl.authFilter).Filter(ctl.canManage).To(ctl.deleteHandler).
		Doc("Delete a menu and detach its roles and permissions").
		Param(ws.PathParameter("menu-id", "Identifier of the menu").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Menu deleted", nil).
		Returns(http.StatusNotFound, "Menu not found", nil))
}

// treeHandler (Handles GET /menus)
func (ctl *MenuController) treeHandler(request *restful.Request, response *restful.Response) {
	force := request.QueryParameter("force")
	nodes, err := ctl.menuService.AllNodes(request.Request.Context(), force == "1" || force == "true")
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, nodes, restful.MIME_JSON)
}

// optionsHandler (Handles GET /menus/options)
func (ctl *MenuController) optionsHandler(request *restful.Request, response *restful.Response) {
	options, err := ctl.menuService.SelectOptions(request.Request.Context())
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, options, restful.MIME_JSON)
}

// createHandler (Handles POST /menus)
func (ctl *MenuController) createHandler(request *restful.Request, response *restful.Response) {
	input := new(MenuInput)
	if err := request.ReadEntity(input); err != nil {
		writeBadRequest(response, "Invalid request body: "+err.Error())
		return
	}

	menu := &models.Menu{}
	applyMenuInput(menu, input)
	if ctl.save(request, response, menu, input) {
		_ = response.WriteHeaderAndJson(http.StatusCreated, menu, restful.MIME_JSON)
	}
}

// updateHandler (Handles PUT /menus/{menu-id})
func (ctl *MenuController) updateHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "menu-id")
	if !ok {
		writeBadRequest(response, "Invalid menu ID format")
		return
	}
	input := new(MenuInput)
	if err := request.ReadEntity(input); err != nil {
		writeBadRequest(response, "Invalid request body: "+err.Error())
		return
	}

	menu, err := ctl.menuService.Find(request.Request.Context(), id)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	applyMenuInput(menu, input)
	if ctl.save(request, response, menu, input) {
		_ = response.WriteHeaderAndJson(http.StatusOK, menu, restful.MIME_JSON)
	}
}

func (ctl *MenuController) save(request *restful.Request, response *restful.Response, menu *models.Menu, input *MenuInput) bool {
	if err := ctl.menuService.SaveWithRelations(request.Request.Context(), menu, input.Roles, input.Permissions); err != nil {
		handleServiceError(response, err)
		return false
	}
	return true
}

// orderHandler (Handles PUT /menus/order)
func (ctl *MenuController) orderHandler(request *restful.Request, response *restful.Response) {
	var nodes []services.OrderNode
	if err := request.ReadEntity(&nodes); err != nil {
		writeBadRequest(response, "Invalid request body: "+err.Error())
		return
	}
	if err := ctl.menuService.SaveOrder(request.Request.Context(), nodes); err != nil {
		handleServiceError(response, err)
		return
	}
	response.WriteHeader(http.StatusOK)
}

// deleteHandler (Handles DELETE /menus/{menu-id})
func (ctl *MenuController) deleteHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "menu-id")
	if !ok {
		writeBadRequest(response, "Invalid menu ID format")
		return
	}
	if err := ctl.menuService.Delete(request.Request.Context(), id); err != nil {
		handleServiceError(response, err)
		return
	}
	response.WriteHeader(http.StatusOK)
}

func applyMenuInput(menu *models.Menu, input *MenuInput) {
	menu.ParentID = input.ParentID
	if input.Order != 0 {
		menu.Order = input.Order
	}
	menu.Title = input.Title
	menu.Icon = input.Icon
	menu.URI = input.URI
	menu.Extension = input.Extension
	if input.Show != nil {
		menu.Show = *input.Show
	} else if menu.ID == 0 {
		menu.Show = true
	}
}
