package handler

import (
	"net/http"
	"time"

	"vastustructural/internal/middleware"
	"vastustructural/internal/model"
	"vastustructural/internal/service"
	"vastustructural/pkg/response"

	"github.com/gin-gonic/gin"
)

var (
	adminRoles      = []model.ActorRole{model.RoleAdmin}
	contractorRoles = []model.ActorRole{model.RoleContractor}
	portalRoles     = []model.ActorRole{model.RoleAdmin, model.RoleContractor}
)

type AuthHandler struct {
	userService       service.UserService
	contractorService service.ContractorService
	secret            []byte
	tokenTTL          time.Duration
}

// NewAuthHandler sets up the login endpoints for both portals
func NewAuthHandler(userService service.UserService, contractorService service.ContractorService, secret []byte, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{userService: userService, contractorService: contractorService, secret: secret, tokenTTL: tokenTTL}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/auth/login", h.Login)
	router.POST("/api/auth/logout", h.Logout)
	router.GET("/api/auth/me", middleware.RequireRole(h.secret, portalRoles...), h.GetMe)
	router.POST("/api/contractor/login", h.ContractorLogin)
}

// Login authenticates a back-office admin
// @Summary      Admin login
// @Description  Verifies email and password and returns a bearer token. The token is also set as the access_token cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	token, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, token.Token, h.tokenTTL)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// ContractorLogin authenticates an approved partner with phone and referral code
// @Summary      Contractor login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ContractorLoginRequest  true  "Phone and referral code"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /api/contractor/login [post]
func (h *AuthHandler) ContractorLogin(c *gin.Context) {
	var req service.ContractorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}

	token, err := h.contractorService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, token.Token, h.tokenTTL)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

// Logout clears the access_token cookie
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	middleware.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out successfully"}))
}

// GetMe returns the identity carried by the current token
// @Summary      Current identity
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	actor := actorFrom(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"id":   actor.ID,
		"role": actor.Role,
		"name": actor.Name,
	}))
}
