package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves one slug-addressed collection, categories or genres.
type CatalogHandler struct {
	base
	path           string
	catalogService service.CatalogService
}

// NewCatalogHandler serves catalogService under path, e.g. "/genres".
func NewCatalogHandler(path string, catalogService service.CatalogService, opts Options) *CatalogHandler {
	return &CatalogHandler{base: newBase(opts), path: path, catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group(h.path, middleware.Require(policy.AdminOrReadOnly))
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.DELETE("/:slug", h.Delete)
	}
}

// GET /api/v1/{categories,genres}?search=
func (h *CatalogHandler) List(c *gin.Context) {
	page, ok := h.pageRequest(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	items, total, err := h.catalogService.List(ctx, c.Query("search"), page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	writePage(c, items, total, page)
}

// POST /api/v1/{categories,genres}
func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.SlugRequest
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	item, err := h.catalogService.Create(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DELETE /api/v1/{categories,genres}/:slug
func (h *CatalogHandler) Delete(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.catalogService.Delete(ctx, c.Param("slug")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
