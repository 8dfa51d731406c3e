package handler

import (
	"net/http"

	"portal/internal/middleware"
	"portal/internal/service"
	"portal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
	limit       gin.HandlerFunc
}

// NewAuthHandler sets up the routing dependencies for session endpoints
func NewAuthHandler(authService service.AuthService, limit gin.HandlerFunc) *AuthHandler {
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	return &AuthHandler{authService: authService, limit: limit}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.limit, h.Register)
		auth.POST("/login", h.limit, h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/refresh", h.Refresh)
		auth.GET("/me", middleware.RequireAuth(), h.Me)
	}
}

// Register handles POST /auth/register
// @Summary      Register a customer account
// @Description  Public self-service registration. The account always gets the customer_user role.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterRequest  true  "Registration"
// @Success      201      {object}  handler.IDResponse
// @Failure      400      {object}  response.Body
// @Failure      409      {object}  response.Body
// @Failure      429      {object}  response.Body
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "All fields are required", err)
		return
	}

	id, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, IDResponse{Message: "User registered successfully", ID: id})
}

// Login handles POST /auth/login
// @Summary      Login
// @Description  Authenticates by email and password and returns an access and a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  service.LoginResponse
// @Failure      400      {object}  response.Body
// @Failure      401      {object}  response.Body
// @Failure      403      {object}  response.Body
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "Email and password are required", err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Logout handles POST /auth/logout
// @Summary      Logout
// @Description  Deletes the supplied refresh token. Always succeeds.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TokenRequest  false  "Refresh token"
// @Success      200      {object}  response.Body
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	var req service.TokenRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.Message("Logout successful"))
}

// Refresh handles POST /auth/refresh
// @Summary      Refresh the session
// @Description  Redeems a stored refresh token for a new access token and rotates the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.TokenRequest  true  "Refresh token"
// @Success      200      {object}  service.RefreshResponse
// @Failure      400      {object}  response.Body
// @Failure      401      {object}  response.Body
// @Failure      403      {object}  response.Body
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "Refresh token is required", err)
		return
	}

	res, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Me handles GET /auth/me
// @Summary      Current user
// @Description  Returns the caller's account together with the role and permissions carried by the token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  service.MeResponse
// @Failure      401  {object}  response.Body
// @Failure      404  {object}  response.Body
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	res, err := h.authService.Me(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, res)
}
