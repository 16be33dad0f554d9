package service

import (
	"context"
	"testing"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/policy"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	author    = policy.Actor{Authenticated: true, UserID: "author-1", Username: "kim", Role: policy.RoleUser}
	stranger  = policy.Actor{Authenticated: true, UserID: "other-2", Username: "lee", Role: policy.RoleUser}
	moderator = policy.Actor{Authenticated: true, UserID: "mod-3", Username: "max", Role: policy.RoleModerator}
)

func TestReviewService_CreateRequiresAuthentication(t *testing.T) {
	svc := NewReviewService(new(MockReviewRepository), new(MockTitleRepository))

	_, err := svc.Create(context.Background(), policy.Anonymous(), 1, dto.CreateReviewDTO{Text: "x", Score: intPtr(5)})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestReviewService_Create(t *testing.T) {
	ctx := context.Background()
	reviews, titles := new(MockReviewRepository), new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	titles.On("Exists", ctx, int64(1)).Return(true, nil)
	reviews.On("ExistsForAuthor", ctx, int64(1), "author-1").Return(false, nil)
	reviews.On("Create", ctx, mock.MatchedBy(func(r *models.Review) bool {
		return r.TitleID == 1 && r.AuthorID == "author-1" && r.Score == 0
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Review).ID = 11
	}).Return(nil)
	reviews.On("FindInTitle", ctx, int64(1), int64(11)).Return(&models.Review{
		ID: 11, Text: "meh", Score: 0, Author: models.User{Username: "kim"},
	}, nil)

	resp, err := svc.Create(ctx, author, 1, dto.CreateReviewDTO{Text: "meh", Score: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "kim", resp.Author)
	assert.Equal(t, 0, resp.Score)
}

func TestReviewService_CreateSecondReviewFails(t *testing.T) {
	ctx := context.Background()
	reviews, titles := new(MockReviewRepository), new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	titles.On("Exists", ctx, int64(1)).Return(true, nil)
	reviews.On("ExistsForAuthor", ctx, int64(1), "author-1").Return(true, nil)

	_, err := svc.Create(ctx, author, 1, dto.CreateReviewDTO{Text: "again", Score: intPtr(9)})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, duplicateReviewMessage, apperror.From(err).Fields["non_field_errors"])
}

func TestReviewService_CreateRaceHitsUniqueIndex(t *testing.T) {
	ctx := context.Background()
	reviews, titles := new(MockReviewRepository), new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	titles.On("Exists", ctx, int64(1)).Return(true, nil)
	reviews.On("ExistsForAuthor", ctx, int64(1), "author-1").Return(false, nil)
	reviews.On("Create", ctx, mock.Anything).Return(&pgconn.PgError{Code: "23505", ConstraintName: "idx_reviews_author_title"})

	_, err := svc.Create(ctx, author, 1, dto.CreateReviewDTO{Text: "again", Score: intPtr(9)})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, duplicateReviewMessage, apperror.From(err).Fields["non_field_errors"])
}

func TestReviewService_CreateOnMissingTitle(t *testing.T) {
	ctx := context.Background()
	reviews, titles := new(MockReviewRepository), new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	titles.On("Exists", ctx, int64(404)).Return(false, nil)

	_, err := svc.Create(ctx, author, 404, dto.CreateReviewDTO{Text: "x", Score: intPtr(1)})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestReviewService_ScoreOutOfRange(t *testing.T) {
	ctx := context.Background()
	reviews, titles := new(MockReviewRepository), new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	titles.On("Exists", ctx, int64(1)).Return(true, nil)

	_, err := svc.Create(ctx, author, 1, dto.CreateReviewDTO{Text: "x", Score: intPtr(11)})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Contains(t, apperror.From(err).Fields, "score")
}

func TestReviewService_UpdatePermissions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   policy.Actor
		wantErr error
	}{
		{"author", author, nil},
		{"moderator", moderator, nil},
		{"other user", stranger, apperror.ErrForbidden},
		{"anonymous", policy.Anonymous(), apperror.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := new(MockReviewRepository)
			svc := NewReviewService(reviews, new(MockTitleRepository))

			review := &models.Review{ID: 2, TitleID: 1, AuthorID: "author-1", Text: "old", Score: 4, Author: models.User{Username: "kim"}}
			reviews.On("FindInTitle", ctx, int64(1), int64(2)).Return(review, nil)
			reviews.On("Update", ctx, review).Return(nil).Maybe()

			resp, err := svc.Update(ctx, tt.actor, 1, 2, dto.UpdateReviewDTO{Score: intPtr(6)})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				reviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 6, resp.Score)
			assert.Equal(t, "old", resp.Text)
		})
	}
}

func TestReviewService_ReviewOfOtherTitleIsNotFound(t *testing.T) {
	ctx := context.Background()
	reviews := new(MockReviewRepository)
	svc := NewReviewService(reviews, new(MockTitleRepository))

	reviews.On("FindInTitle", ctx, int64(2), int64(7)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Get(ctx, 2, 7)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, moderator, 2, 7), apperror.ErrNotFound)
}

func TestReviewService_ListRequiresTitle(t *testing.T) {
	ctx := context.Background()
	reviews, titles := new(MockReviewRepository), new(MockTitleRepository)
	svc := NewReviewService(reviews, titles)

	titles.On("Exists", ctx, int64(1)).Return(true, nil)
	titles.On("Exists", ctx, int64(2)).Return(false, nil)
	reviews.On("ListByTitle", ctx, int64(1), 1, 10).Return([]models.Review{{ID: 1, Author: models.User{Username: "kim"}}}, int64(1), nil)

	list, total, err := svc.List(ctx, 1, dto.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "kim", list[0].Author)

	_, _, err = svc.List(ctx, 2, dto.PageRequest{Page: 1, PageSize: 10})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestReviewService_Authorize(t *testing.T) {
	ctx := context.Background()
	reviews := new(MockReviewRepository)
	svc := NewReviewService(reviews, new(MockTitleRepository))

	reviews.On("FindInTitle", ctx, int64(1), int64(2)).Return(&models.Review{ID: 2, TitleID: 1, AuthorID: "author-1"}, nil)
	reviews.On("FindInTitle", ctx, int64(1), int64(3)).Return(nil, gorm.ErrRecordNotFound)

	assert.NoError(t, svc.Authorize(ctx, author, 1, 2))
	assert.NoError(t, svc.Authorize(ctx, moderator, 1, 2))
	assert.ErrorIs(t, svc.Authorize(ctx, stranger, 1, 2), apperror.ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, author, 1, 3), apperror.ErrNotFound)

	assert.ErrorIs(t, svc.Authorize(ctx, policy.Anonymous(), 1, 2), apperror.ErrUnauthorized)
	reviews.AssertNumberOfCalls(t, "FindInTitle", 4)
}
