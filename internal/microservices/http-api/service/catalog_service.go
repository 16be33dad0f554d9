package service

import (
	"context"
	"errors"
	"strings"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// CatalogService manages one kind of slug-addressed catalog entry:
// categories or genres.
type CatalogService interface {
	List(ctx context.Context, search string, page dto.PageRequest) ([]dto.SlugResponse, int64, error)
	Create(ctx context.Context, req dto.SlugRequest) (*dto.SlugResponse, error)
	Delete(ctx context.Context, slug string) error
}

type catalogService[T repository.Sluggable] struct {
	repo   repository.SlugRepository[T]
	kind   string
	build  func(name, slug string) *T
	toResp func(*T) dto.SlugResponse
}

func NewCategoryService(repo repository.CategoryRepository) CatalogService {
	return &catalogService[models.Category]{
		repo: repo,
		kind: "category",
		build: func(name, slug string) *models.Category {
			return &models.Category{Name: name, Slug: slug}
		},
		toResp: dto.FromCategory,
	}
}

func NewGenreService(repo repository.GenreRepository) CatalogService {
	return &catalogService[models.Genre]{
		repo: repo,
		kind: "genre",
		build: func(name, slug string) *models.Genre {
			return &models.Genre{Name: name, Slug: slug}
		},
		toResp: dto.FromGenre,
	}
}

func (s *catalogService[T]) List(ctx context.Context, search string, page dto.PageRequest) ([]dto.SlugResponse, int64, error) {
	items, total, err := s.repo.List(ctx, strings.TrimSpace(search), page.Page, page.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(items, s.toResp), total, nil
}

func (s *catalogService[T]) Create(ctx context.Context, req dto.SlugRequest) (*dto.SlugResponse, error) {
	fields := apperror.Fields{}
	name := requireText("name", req.Name, fields)
	if len(fields) > 0 {
		return nil, apperror.ValidationWithFields("validation failed", fields)
	}

	nameTaken, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if nameTaken {
		fields["name"] = s.kind + " with this name already exists"
	}
	slugTaken, err := s.repo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if slugTaken {
		fields["slug"] = s.kind + " with this slug already exists"
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationWithFields("validation failed", fields)
	}

	item := s.build(name, req.Slug)
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, translateWrite(err)
	}
	resp := s.toResp(item)
	return &resp, nil
}

func (s *catalogService[T]) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("%s not found", s.kind)
		}
		return err
	}
	return nil
}
