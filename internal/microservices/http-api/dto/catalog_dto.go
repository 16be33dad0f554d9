package dto

import "reviewhub/internal/microservices/http-api/models"

// SlugRequest creates a category or genre.
type SlugRequest struct {
	Name string `json:"name" binding:"required,max=200"`
	Slug string `json:"slug" binding:"required,max=50,slug"`
}

// SlugResponse is how categories and genres are shown, both on their own
// and nested in titles.
type SlugResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromCategory(c *models.Category) SlugResponse {
	return SlugResponse{Name: c.Name, Slug: c.Slug}
}

func FromGenre(g *models.Genre) SlugResponse {
	return SlugResponse{Name: g.Name, Slug: g.Slug}
}
