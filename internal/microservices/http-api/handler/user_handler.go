package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	base
	userService service.UserService
}

func NewUserHandler(userService service.UserService, opts Options) *UserHandler {
	return &UserHandler{base: newBase(opts), userService: userService}
}

// RegisterRoutes registers user management and the caller's own profile.
// /users/me is registered before /users/:username so it is never read as a
// username.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		self := middleware.Require(policy.Self)
		users.GET("/me", self, h.Me)
		users.PATCH("/me", self, h.UpdateMe)

		admin := middleware.Require(policy.AdminOnly)
		users.GET("", admin, h.List)
		users.POST("", admin, h.Create)
		users.GET("/:username", admin, h.Get)
		users.PATCH("/:username", admin, h.Update)
		users.DELETE("/:username", admin, h.Delete)
	}
}

// List returns users ordered by username.
// GET /api/v1/users?search=
func (h *UserHandler) List(c *gin.Context) {
	page, ok := h.pageRequest(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	users, total, err := h.userService.List(ctx, c.Query("search"), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	writePage(c, users, total, page)
}

// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userService.Create(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userService.Update(ctx, c.Param("username"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.userService.Delete(ctx, c.Param("username")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's profile.
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userService.GetByID(ctx, middleware.ActorFrom(c).UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe edits the caller's profile. The role cannot be changed here.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userService.UpdateMe(ctx, middleware.ActorFrom(c).UserID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
