package service

import (
	"context"
	"net/http"
	"strings"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/policy"
)

const reviewNotFound = "review not found"

type ReviewService interface {
	List(ctx context.Context, titleID int64, page dto.PageRequest) ([]dto.ReviewResponse, int64, error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor policy.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error
	// Authorize reports whether actor may modify the review, before any
	// request body is read.
	Authorize(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	exists, err := s.titleRepo.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound(titleNotFound)
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page dto.PageRequest) ([]dto.ReviewResponse, int64, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, 0, err
	}
	reviews, total, err := s.reviewRepo.ListByTitle(ctx, titleID, page.Page, page.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(reviews, dto.FromModelToReviewResponse), total, nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindInTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, reviewNotFound)
	}
	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Create(ctx context.Context, actor policy.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := apperror.FromDecision(policy.AuthenticatedOrReadOnly(http.MethodPost, actor)); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if err := checkReviewInput(&req.Text, req.Score); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsForAuthor(ctx, titleID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Field("non_field_errors", duplicateReviewMessage)
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     req.Text,
		Score:    *req.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, translateWrite(err)
	}
	return s.Get(ctx, titleID, review.ID)
}

// writable loads the review and checks that actor may change it with method.
func (s *reviewService) writable(ctx context.Context, actor policy.Actor, method string, titleID, reviewID int64) (*models.Review, error) {
	if !actor.Authenticated {
		return nil, apperror.ErrUnauthorized
	}
	review, err := s.reviewRepo.FindInTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, reviewNotFound)
	}
	if err := apperror.FromDecision(policy.AuthorOrStaff(method, actor, review.AuthorID)); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Authorize(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error {
	_, err := s.writable(ctx, actor, http.MethodPatch, titleID, reviewID)
	return err
}

func (s *reviewService) Update(ctx context.Context, actor policy.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.writable(ctx, actor, http.MethodPatch, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := checkReviewInput(req.Text, req.Score); err != nil {
		return nil, err
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	resp := dto.FromModelToReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, actor policy.Actor, titleID, reviewID int64) error {
	review, err := s.writable(ctx, actor, http.MethodDelete, titleID, reviewID)
	if err != nil {
		return err
	}
	return notFound(s.reviewRepo.Delete(ctx, review.ID), reviewNotFound)
}

// checkReviewInput validates the fields present; nil means absent.
func checkReviewInput(text *string, score *int) error {
	fields := apperror.Fields{}
	if text != nil && strings.TrimSpace(*text) == "" {
		fields["text"] = blankMessage
	}
	if score != nil && (*score < 0 || *score > 10) {
		fields["score"] = "score must be between 0 and 10"
	}
	if len(fields) > 0 {
		return apperror.ValidationWithFields("validation failed", fields)
	}
	return nil
}
