package repository

import (
	"context"
	"fmt"
	"strings"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ratingSelect adds the average review score as the rating column. The mean
// is NULL for titles without reviews.
const ratingSelect = "titles.*, (SELECT AVG(reviews.score)::float8 FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows a title listing. Empty fields are ignored.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string
	Year         *int
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, title *models.Title) error
	// Update saves the scalar fields and category. A nil genres slice leaves
	// the genre set unchanged; an empty non-nil slice clears it.
	Update(ctx context.Context, title *models.Title, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) withRating(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.slug ASC")
		})
}

func applyTitleFilter(q *gorm.DB, f TitleFilter) *gorm.DB {
	if f.CategorySlug != "" {
		q = q.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.CategorySlug)
	}
	if f.GenreSlug != "" {
		q = q.Where(`EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = titles.id AND g.slug = ?)`, f.GenreSlug)
	}
	if name := strings.TrimSpace(f.Name); name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+escapeLike(name)+"%")
	}
	if f.Year != nil {
		q = q.Where("titles.year = ?", *f.Year)
	}
	return q
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := applyTitleFilter(r.db.WithContext(ctx).Model(&models.Title{}), filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	if err := applyTitleFilter(r.withRating(ctx), filter).
		Scopes(Paginate(page, pageSize)).
		Order("titles.id ASC").
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	return list, total, nil
}

func (r *titleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.withRating(ctx).Where("titles.id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *titleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return count > 0, nil
}

// Create inserts the title and links t.Genres in one transaction.
func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	genres := t.Genres
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		if len(genres) == 0 {
			return nil
		}
		return tx.Model(t).Association("Genres").Replace(genres)
	})
	if err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title, genres []models.Genre) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(t).
			Select("name", "year", "description", "category_id", "updated_at").
			Updates(t).Error; err != nil {
			return err
		}
		if genres == nil {
			return nil
		}
		// Replace with an empty slice does not clear in all gorm versions
		if len(genres) == 0 {
			return tx.Model(t).Association("Genres").Clear()
		}
		return tx.Model(t).Association("Genres").Replace(genres)
	})
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
