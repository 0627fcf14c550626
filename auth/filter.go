package auth

import (
	"net/http"
	"strings"

	restful "github.com/emicklei/go-restful/v3"
)

const (
	AttrUserID   = "user_id"
	AttrUsername = "username"
)

// AuthFilter creates a go-restful FilterFunction for JWT authentication of app's administrators.
func AuthFilter(tokens *TokenManager, app string) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		authHeader := req.HeaderParameter("Authorization")
		if authHeader == "" {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Authorization header required"}, restful.MIME_JSON)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Invalid authorization header format"}, restful.MIME_JSON)
			return
		}

		claims, err := tokens.ParseAndValidateToken(parts[1])
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": err.Error()}, restful.MIME_JSON)
			return
		}
		if claims.App != app {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "token was issued for another application"}, restful.MIME_JSON)
			return
		}

		req.SetAttribute(AttrUserID, claims.UserID)
		req.SetAttribute(AttrUsername, claims.Username)
		chain.ProcessFilter(req, resp)
	}
}

// PermissionFilter rejects requests whose user lacks any of permissions. It must run after AuthFilter.
func PermissionFilter(authz *Authorizer, permissions ...string) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		userID, ok := RequestingUserID(req)
		if !ok {
			_ = resp.WriteHeaderAndJson(http.StatusUnauthorized, map[string]string{"message": "Unauthorized: Cannot identify requesting user"}, restful.MIME_JSON)
			return
		}
		granted, err := authz.UserHasPermissions(req.Request.Context(), userID, permissions...)
		if err != nil {
			_ = resp.WriteHeaderAndJson(http.StatusInternalServerError, map[string]string{"message": "Error checking permissions"}, restful.MIME_JSON)
			return
		}
		if !granted {
			_ = resp.WriteHeaderAndJson(http.StatusForbidden, map[string]string{"message": "Forbidden: permission denied"}, restful.MIME_JSON)
			return
		}
		chain.ProcessFilter(req, resp)
	}
}

// RequestingUserID extracts the user ID set by the AuthFilter.
func RequestingUserID(req *restful.Request) (uint, bool) {
	userID, ok := req.Attribute(AttrUserID).(uint)
	return userID, ok
}
