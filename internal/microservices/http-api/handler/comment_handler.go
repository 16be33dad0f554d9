package handler

import (
	"net/http"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/policy"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	base
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService, opts Options) *CommentHandler {
	return &CommentHandler{base: newBase(opts), commentService: commentService}
}

// RegisterRoutes registers comment routes under their review.
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/titles/:title_id/reviews/:review_id/comments", middleware.Require(policy.AuthenticatedOrReadOnly))
	{
		comments.GET("", h.List)
		comments.POST("", h.Create)
		comments.GET("/:comment_id", h.Get)
		comments.PATCH("/:comment_id", h.Update)
		comments.DELETE("/:comment_id", h.Delete)
	}
}

// commentPath holds the ids addressing a comment collection or item.
type commentPath struct {
	titleID, reviewID, commentID int64
}

func (h *CommentHandler) path(c *gin.Context, withComment bool) (commentPath, bool) {
	var p commentPath
	var ok bool
	if p.titleID, ok = h.pathID(c, "title_id", "title"); !ok {
		return p, false
	}
	if p.reviewID, ok = h.pathID(c, "review_id", "review"); !ok {
		return p, false
	}
	if withComment {
		if p.commentID, ok = h.pathID(c, "comment_id", "comment"); !ok {
			return p, false
		}
	}
	return p, true
}

// List returns the comments of a review, newest first.
// GET /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	p, ok := h.path(c, false)
	if !ok {
		return
	}
	page, ok := h.pageRequest(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	comments, total, err := h.commentService.List(ctx, p.titleID, p.reviewID, page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	writePage(c, comments, total, page)
}

// GET /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Get(c *gin.Context) {
	p, ok := h.path(c, true)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	comment, err := h.commentService.Get(ctx, p.titleID, p.reviewID, p.commentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// POST /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	p, ok := h.path(c, false)
	if !ok {
		return
	}
	var req dto.CreateCommentDTO
	if !h.bind(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	comment, err := h.commentService.Create(ctx, middleware.ActorFrom(c), p.titleID, p.reviewID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// PATCH /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	p, ok := h.path(c, true)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	actor := middleware.ActorFrom(c)
	if err := h.commentService.Authorize(ctx, actor, p.titleID, p.reviewID, p.commentID); err != nil {
		h.respondError(c, err)
		return
	}
	var req dto.UpdateCommentDTO
	if !h.bind(c, &req) {
		return
	}

	comment, err := h.commentService.Update(ctx, actor, p.titleID, p.reviewID, p.commentID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DELETE /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	p, ok := h.path(c, true)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.commentService.Delete(ctx, middleware.ActorFrom(c), p.titleID, p.reviewID, p.commentID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
