package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	base
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService, opts Options) *AuthHandler {
	return &AuthHandler{base: newBase(opts), authService: authService}
}

// RegisterRoutes registers the signup and token routes. Extra middleware,
// such as a rate limiter, runs before each of them.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, mw ...gin.HandlerFunc) {
	auth := router.Group("/auth", mw...)
	{
		auth.POST("/email", h.Register)
		auth.POST("/token", h.Token)
	}
}

// Register sends a confirmation code to the email, creating the account on
// first use.
// POST /api/v1/auth/email
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	resp, created, err := h.authService.Register(ctx, req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

// Token exchanges an email and confirmation code for an access token.
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	resp, err := h.authService.IssueToken(ctx, req.Email, req.ConfirmationCode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
