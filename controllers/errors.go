package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"admin-rbac/repositories"
	"admin-rbac/services"

	restful "github.com/emicklei/go-restful/v3"
)

// handleServiceError translates service errors to HTTP responses.
func handleServiceError(response *restful.Response, err error) {
	statusCode := http.StatusInternalServerError
	message := "An internal error occurred" // Default message

	switch {
	case errors.Is(err, repositories.ErrMenuNotFound),
		errors.Is(err, repositories.ErrRoleNotFound),
		errors.Is(err, repositories.ErrPermissionNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrInvalidMenu),
		errors.Is(err, services.ErrInvalidParent),
		errors.Is(err, services.ErrMenuCycle),
		errors.Is(err, services.ErrInvalidOrder),
		errors.Is(err, services.ErrInvalidRole):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrRoleSlugTaken):
		statusCode = http.StatusConflict
		message = err.Error()
	}

	_ = response.WriteHeaderAndJson(statusCode, map[string]string{"message": message}, restful.MIME_JSON)
}

func writeBadRequest(response *restful.Response, message string) {
	_ = response.WriteHeaderAndJson(http.StatusBadRequest, map[string]string{"message": message}, restful.MIME_JSON)
}

func pathID(request *restful.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(request.PathParameter(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// parseIDs reads a comma separated list such as "1,2,3".
func parseIDs(raw string) ([]uint, bool) {
	ids := []uint{}
	if strings.TrimSpace(raw) == "" {
		return ids, true
	}
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}
