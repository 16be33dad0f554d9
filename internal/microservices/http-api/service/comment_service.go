package service

import (
	"context"
	"net/http"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/policy"
)

const commentNotFound = "comment not found"

// CommentService manages comments on a review. Every call is scoped to a
// title and review pair; a review outside the title is reported as missing.
type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page dto.PageRequest) ([]dto.CommentResponse, int64, error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.CreateCommentDTO) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error
	// Authorize reports whether actor may modify the comment.
	Authorize(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

func (s *commentService) review(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.FindInTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, reviewNotFound)
	}
	return review, nil
}

func (s *commentService) comment(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.commentRepo.FindInReview(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err, commentNotFound)
	}
	return c, nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page dto.PageRequest) ([]dto.CommentResponse, int64, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, 0, err
	}
	comments, total, err := s.commentRepo.ListByReview(ctx, reviewID, page.Page, page.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(comments, dto.FromModelToCommentResponse), total, nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	c, err := s.comment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToCommentResponse(c)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if err := apperror.FromDecision(policy.AuthenticatedOrReadOnly(http.MethodPost, actor)); err != nil {
		return nil, err
	}
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	if err := checkReviewInput(&req.Text, nil); err != nil {
		return nil, err
	}

	c := &models.Comment{ReviewID: reviewID, AuthorID: actor.UserID, Text: req.Text}
	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	c.Author = models.User{ID: actor.UserID, Username: actor.Username}

	resp := dto.FromModelToCommentResponse(c)
	return &resp, nil
}

// writable loads the comment and checks that actor may change it with method.
func (s *commentService) writable(ctx context.Context, actor policy.Actor, method string, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if !actor.Authenticated {
		return nil, apperror.ErrUnauthorized
	}
	c, err := s.comment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := apperror.FromDecision(policy.AuthorOrStaff(method, actor, c.AuthorID)); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) Authorize(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error {
	_, err := s.writable(ctx, actor, http.MethodPatch, titleID, reviewID, commentID)
	return err
}

func (s *commentService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	c, err := s.writable(ctx, actor, http.MethodPatch, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := checkReviewInput(&req.Text, nil); err != nil {
		return nil, err
	}

	c.Text = req.Text
	if err := s.commentRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := dto.FromModelToCommentResponse(c)
	return &resp, nil
}

func (s *commentService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID, commentID int64) error {
	c, err := s.writable(ctx, actor, http.MethodDelete, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	return notFound(s.commentRepo.Delete(ctx, c.ID), commentNotFound)
}
