package dto

import (
	"time"

	"reviewhub/internal/microservices/http-api/models"
)

// CreateReviewDTO for creating a review; the title and author come from the
// path and the caller.
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required,min=1"`
	Score *int   `json:"score" binding:"required,gte=0,lte=10"`
}

// UpdateReviewDTO for partially updating a review
type UpdateReviewDTO struct {
	Text  *string `json:"text" binding:"omitempty,min=1"`
	Score *int    `json:"score" binding:"omitempty,gte=0,lte=10"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// FromModelToReviewResponse converts a Review model to ReviewResponse DTO
func FromModelToReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
