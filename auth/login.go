package auth

import (
	"errors"
	"net/http"

	"admin-rbac/repositories"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"golang.org/x/crypto/bcrypt"
)

// LoginCredentials defines the structure of the login request
type LoginCredentials struct {
	Username string `json:"username" description:"Username for login"`
	Password string `json:"password" description:"Password for login"`
}

// LoginResponse defines the structure of the login response
type LoginResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// LoginHandler authenticates administrators of one namespace.
type LoginHandler struct {
	app    string
	users  repositories.UserRepository
	tokens *TokenManager
}

func NewLoginHandler(app string, users repositories.UserRepository, tokens *TokenManager) *LoginHandler {
	return &LoginHandler{app: app, users: users, tokens: tokens}
}

// RegisterRoutes adds POST /auth/login to ws.
func (h *LoginHandler) RegisterRoutes(ws *restful.WebService) {
	ws.Route(ws.POST("/auth/login").To(h.Login).
		Doc("Log in as an administrator").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Reads(LoginCredentials{}).
		Returns(http.StatusOK, "Logged in", LoginResponse{}).
		Returns(http.StatusBadRequest, "Invalid request body", LoginResponse{}).
		Returns(http.StatusUnauthorized, "Invalid credentials", LoginResponse{}))
}

// Login handles the /auth/login route.
func (h *LoginHandler) Login(request *restful.Request, response *restful.Response) {
	creds := new(LoginCredentials)
	if err := request.ReadEntity(creds); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Invalid request body: " + err.Error()}, restful.MIME_JSON)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		_ = response.WriteHeaderAndJson(http.StatusBadRequest, LoginResponse{Message: "Username and password are required"}, restful.MIME_JSON)
		return
	}

	user, err := h.users.FindByUsername(request.Request.Context(), creds.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Avoid revealing whether the user exists
			_ = response.WriteHeaderAndJson(http.StatusUnauthorized, LoginResponse{Message: "Invalid credentials"}, restful.MIME_JSON)
			return
		}
		_ = response.WriteHeaderAndJson(http.StatusInternalServerError, LoginResponse{Message: "Database error"}, restful.MIME_JSON)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		_ = response.WriteHeaderAndJson(http.StatusUnauthorized, LoginResponse{Message: "Invalid credentials"}, restful.MIME_JSON)
		return
	}

	token, err := h.tokens.GenerateToken(h.app, user)
	if err != nil {
		_ = response.WriteHeaderAndJson(http.StatusInternalServerError, LoginResponse{Message: "Could not generate token"}, restful.MIME_JSON)
		return
	}
	_ = response.WriteHeaderAndJson(http.StatusOK, LoginResponse{Token: token}, restful.MIME_JSON)
}
