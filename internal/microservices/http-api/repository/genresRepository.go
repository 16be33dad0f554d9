package repository

import (
	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type GenreRepository = SlugRepository[models.Genre]

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return newSlugRepository[models.Genre](db, "genre")
}
