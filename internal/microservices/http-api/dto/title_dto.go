package dto

import "reviewhub/internal/microservices/http-api/models"

// CreateTitleRequest references the category and genres by slug.
type CreateTitleRequest struct {
	Name        string   `json:"name" binding:"required,max=200"`
	Year        *int     `json:"year"`
	Description string   `json:"description" binding:"max=1000"`
	Category    *string  `json:"category"`
	Genre       []string `json:"genre"`
}

// UpdateTitleRequest is a partial update. An empty category string clears
// the category; a present genre list replaces the current genres.
type UpdateTitleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=200"`
	Year        *int      `json:"year"`
	Description *string   `json:"description" binding:"omitempty,max=1000"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

type TitleResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Year        *int           `json:"year"`
	Rating      *float64       `json:"rating"`
	Description string         `json:"description"`
	Genre       []SlugResponse `json:"genre"`
	Category    *SlugResponse  `json:"category"`
}

// FromModelToTitleResponse converts a Title model to TitleResponse DTO
func FromModelToTitleResponse(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       make([]SlugResponse, 0, len(t.Genres)),
	}
	for i := range t.Genres {
		resp.Genre = append(resp.Genre, FromGenre(&t.Genres[i]))
	}
	if t.Category != nil {
		c := FromCategory(t.Category)
		resp.Category = &c
	}
	return resp
}
