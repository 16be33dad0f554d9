package repository

import (
	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CategoryRepository = SlugRepository[models.Category]

// NewCategoryRepository returns the category store. Deleting a category
// leaves its titles in place; the foreign key sets their category to NULL.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return newSlugRepository[models.Category](db, "category")
}
