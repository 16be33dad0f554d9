package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// Sluggable is a catalog entry addressed by slug.
type Sluggable interface {
	models.Category | models.Genre
}

// SlugRepository stores categories and genres, which share the same shape.
type SlugRepository[T Sluggable] interface {
	List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]T, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, item *T) error
	DeleteBySlug(ctx context.Context, slug string) error
}

type slugRepository[T Sluggable] struct {
	db   *gorm.DB
	kind string
}

func newSlugRepository[T Sluggable](db *gorm.DB, kind string) *slugRepository[T] {
	return &slugRepository[T]{db: db, kind: kind}
}

// List returns entries ordered by slug. search matches the name exactly.
func (r *slugRepository[T]) List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error) {
	var list []T
	var total int64

	q := r.db.WithContext(ctx).Model(new(T))
	if search != "" {
		q = q.Where("name = ?", search)
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", r.kind, err)
	}
	if err := q.Scopes(Paginate(page, pageSize)).Order("slug ASC").Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.kind, err)
	}
	return list, total, nil
}

// FindBySlugs returns the entries matching slugs, in slug order. Unknown
// slugs are simply absent from the result.
func (r *slugRepository[T]) FindBySlugs(ctx context.Context, slugs []string) ([]T, error) {
	var list []T
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("slug ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find %s by slug: %w", r.kind, err)
	}
	return list, nil
}

func (r *slugRepository[T]) ExistsByName(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, "name", name)
}

func (r *slugRepository[T]) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	return r.exists(ctx, "slug", slug)
}

func (r *slugRepository[T]) exists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s %s: %w", r.kind, column, err)
	}
	return count > 0, nil
}

func (r *slugRepository[T]) Create(ctx context.Context, item *T) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create %s: %w", r.kind, err)
	}
	return nil
}

func (r *slugRepository[T]) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(new(T))
	if result.Error != nil {
		return fmt.Errorf("delete %s: %w", r.kind, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
