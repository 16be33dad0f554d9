package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"
)

const titleNotFound = "title not found"

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page dto.PageRequest) ([]dto.TitleResponse, int64, error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	now          func() time.Time
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		now:          time.Now,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page dto.PageRequest) ([]dto.TitleResponse, int64, error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page.Page, page.PageSize)
	if err != nil {
		return nil, 0, err
	}
	return dto.MapSlice(titles, dto.FromModelToTitleResponse), total, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, titleNotFound)
	}
	resp := dto.FromModelToTitleResponse(t)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleRequest) (*dto.TitleResponse, error) {
	fields := apperror.Fields{}
	name := requireText("name", req.Name, fields)
	s.checkYear(req.Year, fields)

	var categoryID *int64
	if req.Category != nil && *req.Category != "" {
		id, err := s.resolveCategory(ctx, *req.Category, fields)
		if err != nil {
			return nil, err
		}
		categoryID = id
	}
	genres, err := s.resolveGenres(ctx, req.Genre, fields)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationWithFields("validation failed", fields)
	}

	t := &models.Title{
		Name:        name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  categoryID,
		Genres:      genres,
	}
	if err := s.titleRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return s.Get(ctx, t.ID)
}

func (s *titleService) Update(ctx context.Context, id int64, req dto.UpdateTitleRequest) (*dto.TitleResponse, error) {
	t, err := s.titleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, titleNotFound)
	}

	fields := apperror.Fields{}
	var name string
	if req.Name != nil {
		name = requireText("name", *req.Name, fields)
	}
	s.checkYear(req.Year, fields)

	if req.Category != nil {
		if *req.Category == "" {
			t.CategoryID = nil
		} else {
			catID, err := s.resolveCategory(ctx, *req.Category, fields)
			if err != nil {
				return nil, err
			}
			if catID != nil {
				t.CategoryID = catID
			}
		}
	}

	var genres []models.Genre
	if req.Genre != nil {
		genres, err = s.resolveGenres(ctx, *req.Genre, fields)
		if err != nil {
			return nil, err
		}
		if genres == nil {
			genres = []models.Genre{}
		}
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationWithFields("validation failed", fields)
	}

	if req.Name != nil {
		t.Name = name
	}
	if req.Year != nil {
		t.Year = req.Year
	}
	if req.Description != nil {
		t.Description = *req.Description
	}

	if err := s.titleRepo.Update(ctx, t, genres); err != nil {
		return nil, err
	}
	return s.Get(ctx, t.ID)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	return notFound(s.titleRepo.Delete(ctx, id), titleNotFound)
}

func (s *titleService) checkYear(year *int, fields apperror.Fields) {
	if year == nil {
		return
	}
	if current := s.now().Year(); *year > current {
		fields["year"] = fmt.Sprintf("year cannot be later than %d", current)
	}
}

// resolveCategory returns the id of the category with slug, recording a
// field error when there is none.
func (s *titleService) resolveCategory(ctx context.Context, slug string, fields apperror.Fields) (*int64, error) {
	found, err := s.categoryRepo.FindBySlugs(ctx, []string{slug})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		fields["category"] = fmt.Sprintf("category with slug %q does not exist", slug)
		return nil, nil
	}
	return &found[0].ID, nil
}

// resolveGenres loads the genres named by slugs, recording a field error
// listing every unknown slug.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string, fields apperror.Fields) ([]models.Genre, error) {
	slugs = dedupe(slugs)
	if len(slugs) == 0 {
		return nil, nil
	}
	found, err := s.genreRepo.FindBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(found) == len(slugs) {
		return found, nil
	}

	known := make(map[string]bool, len(found))
	for _, g := range found {
		known[g.Slug] = true
	}
	var missing []string
	for _, slug := range slugs {
		if !known[slug] {
			missing = append(missing, fmt.Sprintf("%q", slug))
		}
	}
	sort.Strings(missing)
	fields["genre"] = "genre with slug " + strings.Join(missing, ", ") + " does not exist"
	return nil, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
