package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	base
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService, opts Options) *ReviewHandler {
	return &ReviewHandler{base: newBase(opts), reviewService: reviewService}
}

// RegisterRoutes registers review routes. Anonymous writes stop at the group
// guard; per-review ownership is checked by the service.
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/titles/:title_id/reviews", middleware.Require(policy.AuthenticatedOrReadOnly))
	{
		reviews.GET("", h.List)
		reviews.POST("", h.Create)
		reviews.GET("/:review_id", h.Get)
		reviews.PATCH("/:review_id", h.Update)
		reviews.DELETE("/:review_id", h.Delete)
	}
}

// List returns the reviews of a title, newest first.
// GET /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := h.pathID(c, "title_id", "title")
	if !ok {
		return
	}
	page, ok := h.pageRequest(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	reviews, total, err := h.reviewService.List(ctx, titleID, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	writePage(c, reviews, total, page)
}

// GET /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := h.reviewPath(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	review, err := h.reviewService.Get(ctx, titleID, reviewID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// Create adds the caller's review of a title.
// POST /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := h.pathID(c, "title_id", "title")
	if !ok {
		return
	}
	var req dto.CreateReviewDTO
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	review, err := h.reviewService.Create(ctx, middleware.ActorFrom(c), titleID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// PATCH /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := h.reviewPath(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	actor := middleware.ActorFrom(c)
	if err := h.reviewService.Authorize(ctx, actor, titleID, reviewID); err != nil {
		h.respondError(c, err)
		return
	}
	var req dto.UpdateReviewDTO
	if !h.bind(c, &req) {
		return
	}

	review, err := h.reviewService.Update(ctx, actor, titleID, reviewID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := h.reviewPath(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.reviewService.Delete(ctx, middleware.ActorFrom(c), titleID, reviewID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ReviewHandler) reviewPath(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = h.pathID(c, "title_id", "title"); !ok {
		return
	}
	reviewID, ok = h.pathID(c, "review_id", "review")
	return
}
