package handler

import (
	"net/http"
	"strconv"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	base
	titleService service.TitleService
}

func NewTitleHandler(titleService service.TitleService, opts Options) *TitleHandler {
	return &TitleHandler{base: newBase(opts), titleService: titleService}
}

// RegisterRoutes registers the title routes. Reviews and comments nest
// under /titles/:title_id and are registered by their own handlers.
func (h *TitleHandler) RegisterRoutes(router *gin.RouterGroup) {
	titles := router.Group("/titles", middleware.Require(policy.AdminOrReadOnly))
	{
		titles.GET("", h.List)
		titles.POST("", h.Create)
		titles.GET("/:title_id", h.Get)
		titles.PATCH("/:title_id", h.Update)
		titles.DELETE("/:title_id", h.Delete)
	}
}

// List returns titles, optionally filtered.
// GET /api/v1/titles?category=&genre=&name=&year=
func (h *TitleHandler) List(c *gin.Context) {
	page, ok := h.pageRequest(c)
	if !ok {
		return
	}

	filter := repository.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(c, apperror.Field("year", "enter a whole number"))
			return
		}
		filter.Year = &year
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	titles, total, err := h.titleService.List(ctx, filter, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	writePage(c, titles, total, page)
}

// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "title_id", "title")
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	title, err := h.titleService.Get(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.CreateTitleRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	title, err := h.titleService.Create(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, title)
}

// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "title_id", "title")
	if !ok {
		return
	}
	var req dto.UpdateTitleRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	title, err := h.titleService.Update(ctx, id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, title)
}

// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "title_id", "title")
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.titleService.Delete(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
