package controllers

import (
	"net/http"

	"admin-rbac/auth"
	"admin-rbac/models"
	"admin-rbac/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
)

// RolePermission guards every role write.
const RolePermission = "roles"

type RoleController struct {
	roleService services.RoleService
	authFilter  restful.FilterFunction
	canManage   restful.FilterFunction
}

func NewRoleController(roleService services.RoleService, authFilter restful.FilterFunction, authz *auth.Authorizer) *RoleController {
	return &RoleController{
		roleService: roleService,
		authFilter:  authFilter,
		canManage:   auth.PermissionFilter(authz, RolePermission),
	}
}

// CanResponse answers a role permission check.
type CanResponse struct {
	RoleID     uint   `json:"role_id"`
	Permission string `json:"permission"`
	Granted    bool   `json:"granted"`
}

// RegisterRoutes sets up the role routes on ws.
func (ctl *RoleController) RegisterRoutes(ws *restful.WebService) {
	tags := []string{"roles"}

	ws.Route(ws.GET("/roles").Filter(ctl.authFilter).To(ctl.listHandler).
		Doc("List roles").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes([]models.Role{}).
		Returns(http.StatusOK, "Roles listed", []models.Role{}))

	ws.Route(ws.GET("/roles/permissions").Filter(ctl.authFilter).To(ctl.permissionIDsHandler).
		Doc("Group permission ids by role id").
		Param(ws.QueryParameter("ids", "Comma separated role ids").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(map[uint][]uint{}).
		Returns(http.StatusOK, "Permission ids by role", map[uint][]uint{}).
		Returns(http.StatusBadRequest, "Invalid role ids", nil))

	ws.Route(ws.GET("/roles/{role-id}").Filter(ctl.authFilter).To(ctl.getHandler).
		Doc("Get a role with its permissions").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(models.Role{}).
		Returns(http.StatusOK, "Role found", models.Role{}).
		Returns(http.StatusNotFound, "Role not found", nil))

	ws.Route(ws.GET("/roles/{role-id}/can/{permission}").Filter(ctl.authFilter).To(ctl.canHandler).
		Doc("Check whether a role holds a permission").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Param(ws.PathParameter("permission", "Permission slug").DataType("string")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Writes(CanResponse{}).
		Returns(http.StatusOK, "Checked", CanResponse{}))

	ws.Route(ws.POST("/roles").Filter(ctl.authFilter).Filter(ctl.canManage).To(ctl.createHandler).
		Doc("Create a role").
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RoleInput{}).
		Returns(http.StatusCreated, "Role created", models.Role{}).
		Returns(http.StatusBadRequest, "Invalid request body", nil).
		Returns(http.StatusConflict, "Role slug already exists", nil))

	ws.Route(ws.PUT("/roles/{role-id}").Filter(ctl.authFilter).Filter(ctl.canManage).To(ctl.updateHandler).
		Doc("Update a role").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Reads(services.RoleInput{}).
		Returns(http.StatusOK, "Role updated", models.Role{}).
		Returns(http.StatusNotFound, "Role not found", nil).
		Returns(http.StatusConflict, "Role slug already exists", nil))

	ws.Route(ws.DELETE("/roles/{role-id}").Filter(ctl.authFilter).Filter(ctl.canManage).To(ctl.deleteHandler).
		Doc("Delete a role and detach its permissions and administrators").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, tags).
		Returns(http.StatusOK, "Role deleted", nil).
		Returns(http.StatusNotFound, "Role not found", nil))
}

// listHandler (Handles GET /roles)
func (ctl *RoleController) listHandler(request *restful.Request, response *restful.Response) {
	roles, err := ctl.roleService.List(request.Request.Context())
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, roles, restful.MIME_JSON)
}

// permissionIDsHandler (Handles GET /roles/permissions?ids=1,2)
func (ctl *RoleController) permissionIDsHandler(request *restful.Request, response *restful.Response) {
	ids, ok := parseIDs(request.QueryParameter("ids"))
	if !ok {
		writeBadRequest(response, "Invalid role ids")
		return
	}
	grouped, err := ctl.roleService.GetPermissionID(request.Request.Context(), ids)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, grouped, restful.MIME_JSON)
}

// getHandler (Handles GET /roles/{role-id})
func (ctl *RoleController) getHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "role-id")
	if !ok {
		writeBadRequest(response, "Invalid role ID format")
		return
	}
	role, err := ctl.roleService.Find(request.Request.Context(), id)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, role, restful.MIME_JSON)
}

// canHandler (Handles GET /roles/{role-id}/can/{permission})
func (ctl *RoleController) canHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "role-id")
	if !ok {
		writeBadRequest(response, "Invalid role ID format")
		return
	}
	slug := request.PathParameter("permission")
	granted, err := ctl.roleService.Can(request.Request.Context(), id, slug)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, CanResponse{RoleID: id, Permission: slug, Granted: granted}, restful.MIME_JSON)
}

// createHandler (Handles POST /roles)
func (ctl *RoleController) createHandler(request *restful.Request, response *restful.Response) {
	input := new(services.RoleInput)
	if err := request.ReadEntity(input); err != nil {
		writeBadRequest(response, "Invalid request body: "+err.Error())
		return
	}
	role, err := ctl.roleService.Create(request.Request.Context(), input)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusCreated, role, restful.MIME_JSON)
}

// updateHandler (Handles PUT /roles/{role-id})
func (ctl *RoleController) updateHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "role-id")
	if !ok {
		writeBadRequest(response, "Invalid role ID format")
		return
	}
	input := new(services.RoleInput)
	if err := request.ReadEntity(input); err != nil {
		writeBadRequest(response, "Invalid request body: "+err.Error())
		return
	}
	role, err := ctl.roleService.Update(request.Request.Context(), id, input)
	if err != nil {
		handleServiceError(response, err)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, role, restful.MIME_JSON)
}

// deleteHandler (Handles DELETE /roles/{role-id})
func (ctl *RoleController) deleteHandler(request *restful.Request, response *restful.Response) {
	id, ok := pathID(request, "role-id")
	if !ok {
		writeBadRequest(response, "Invalid role ID format")
		return
	}
	if err := ctl.roleService.Delete(request.Request.Context(), id); err != nil {
		handleServiceError(response, err)
		return
	}
	response.WriteHeader(http.StatusOK)
}
