package controllers

import (
	"net/http"

	"github.com/alex-pricope/online-voting-system/api/models"
	"github.com/alex-pricope/online-voting-system/api/transport"
	"github.com/alex-pricope/online-voting-system/auth"
	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	service *auth.Service
}

func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

func (c *AuthController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/auth")

	group.POST("/register", c.register)
	group.POST("/login", c.login)

	authed := group.Group("", transport.AuthMiddleware(c.service))
	authed.GET("/me", c.me)
	authed.POST("/logout", c.logout)
	authed.PUT("/users/:id/role", transport.RequireRoles(storage.RoleSuperAdmin), c.assignRole)
}

// register godoc
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "New user"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Email already registered"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/auth/register [post]
func (c *AuthController) register(g *gin.Context) {
	var req models.RegisterRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		logging.Log.Warnf("AUTH: invalid register request: %v", err)
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	result, err := c.service.Register(g.Request.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		writeError(g, err, "could not register user")
		return
	}
	g.JSON(http.StatusCreated, models.TransformAuthResult(result))
}

// login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse "Invalid email or password"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/auth/login [post]
func (c *AuthController) login(g *gin.Context) {
	var req models.LoginRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	result, err := c.service.Login(g.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(g, err, "could not log in")
		return
	}
	g.JSON(http.StatusOK, models.TransformAuthResult(result))
}

// me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerToken
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} models.ErrorResponse "Session expired"
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/auth/me [get]
func (c *AuthController) me(g *gin.Context) {
	user, err := c.service.Me(g.Request.Context(), transport.CallerFromContext(g))
	if err != nil {
		writeError(g, err, "could not load user")
		return
	}
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}

// logout godoc
// @Summary Log out
// @Tags auth
// @Produce json
// @Security BearerToken
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/auth/logout [post]
func (c *AuthController) logout(g *gin.Context) {
	if err := c.service.Logout(g.Request.Context(), transport.CallerFromContext(g)); err != nil {
		writeError(g, err, "could not log out")
		return
	}
	g.JSON(http.StatusOK, &models.MessageResponse{Message: "logged out"})
}

// assignRole godoc
// @Summary Assign a role
// @Description Super admins change a user's role; the user has to log in again
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerToken
// @Param id path string true "User ID"
// @Param role body models.AssignRoleRequest true "Role"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/auth/users/{id}/role [put]
func (c *AuthController) assignRole(g *gin.Context) {
	var req models.AssignRoleRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &models.ErrorResponse{Error: "invalid request format"})
		return
	}

	user, err := c.service.AssignRole(g.Request.Context(), transport.CallerFromContext(g), g.Param("id"), req.Role)
	if err != nil {
		writeError(g, err, "could not assign role")
		return
	}
	g.JSON(http.StatusOK, models.TransformUserFromStorage(user))
}
