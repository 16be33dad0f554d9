package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"reviewhub/internal/apperror"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

// Options are shared by every handler.
type Options struct {
	Log             *zap.Logger
	DefaultPageSize int
}

func (o Options) withDefaults() Options {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.DefaultPageSize <= 0 || o.DefaultPageSize > dto.MaxPageSize {
		o.DefaultPageSize = 10
	}
	return o
}

// RegisterValidators adds the custom binding tags to gin's validator. It must
// run once before any route binds a request.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return apperror.RegisterValidations(v)
}

type base struct {
	log             *zap.Logger
	defaultPageSize int
}

func newBase(opts Options) base {
	opts = opts.withDefaults()
	return base{log: opts.Log, defaultPageSize: opts.DefaultPageSize}
}

// respondError renders err and logs anything unexpected.
func (b base) respondError(c *gin.Context, err error) {
	e := apperror.From(err)
	if e.Code == apperror.CodeInternal {
		b.log.Error("request failed",
			zap.String("request_id", middleware.RequestIDFrom(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	c.JSON(e.HTTPStatus(), middleware.ErrorBody(e))
}

// bind decodes the JSON body into req, answering 400 on failure.
func (b base) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		b.respondError(c, apperror.FromBinding(err))
		return false
	}
	return true
}

// pathID parses a numeric path parameter. Malformed ids cannot match any
// record, so they are reported as not found.
func (b base) pathID(c *gin.Context, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		b.respondError(c, apperror.NotFoundf("%s not found", what))
		return 0, false
	}
	return id, true
}

// pageRequest reads ?page= and ?page_size=.
func (b base) pageRequest(c *gin.Context) (dto.PageRequest, bool) {
	req := dto.PageRequest{Page: 1, PageSize: b.defaultPageSize}
	fields := apperror.Fields{}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			fields["page"] = "must be a positive integer"
		}
		req.Page = page
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			fields["page_size"] = "must be a positive integer"
		}
		req.PageSize = min(size, dto.MaxPageSize)
	}
	if len(fields) == 0 && !req.InRange() {
		fields["page"] = "page is too large"
	}

	if len(fields) > 0 {
		b.respondError(c, apperror.ValidationWithFields("invalid pagination", fields))
		return req, false
	}
	return req, true
}

// requestURL rebuilds the absolute URL of the current request for page links.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}

func writePage[T any](c *gin.Context, results []T, total int64, req dto.PageRequest) {
	c.JSON(http.StatusOK, dto.NewPage(results, total, req, requestURL(c)))
}

func withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
