package client

// http_client.go talks to the reviewhub HTTP API.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reviewhub/internal/microservices/http-api/dto"
)

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.Message, e.Status, strings.Join(parts, "; "))
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/") + "/api/v1",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) do(method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Fields = payload.Fields
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// RequestCode asks the server to email a confirmation code.
func (c *HTTPClient) RequestCode(email string) (*dto.RegisterResponse, error) {
	var resp dto.RegisterResponse
	if err := c.do(http.MethodPost, "/auth/email", nil, dto.RegisterRequest{Email: email}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IssueToken exchanges a confirmation code for an access token.
func (c *HTTPClient) IssueToken(email, code string) (string, error) {
	var resp dto.TokenResponse
	req := dto.TokenRequest{Email: email, ConfirmationCode: code}
	if err := c.do(http.MethodPost, "/auth/token", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *HTTPClient) Me() (*dto.UserResponse, error) {
	var resp dto.UserResponse
	if err := c.do(http.MethodGet, "/users/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListCatalog lists "categories" or "genres".
func (c *HTTPClient) ListCatalog(kind string, page int) (*dto.Page[dto.SlugResponse], error) {
	var resp dto.Page[dto.SlugResponse]
	if err := c.do(http.MethodGet, "/"+kind, pageQuery(page), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCatalog creates a category or genre. Requires an admin token.
func (c *HTTPClient) CreateCatalog(kind, name, slug string) (*dto.SlugResponse, error) {
	var resp dto.SlugResponse
	if err := c.do(http.MethodPost, "/"+kind, nil, dto.SlugRequest{Name: name, Slug: slug}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TitleQuery mirrors the title list filters.
type TitleQuery struct {
	Category string
	Genre    string
	Name     string
	Year     int
	Page     int
}

func (c *HTTPClient) ListTitles(q TitleQuery) (*dto.Page[dto.TitleResponse], error) {
	query := pageQuery(q.Page)
	for key, value := range map[string]string{"category": q.Category, "genre": q.Genre, "name": q.Name} {
		if value != "" {
			query.Set(key, value)
		}
	}
	if q.Year != 0 {
		query.Set("year", strconv.Itoa(q.Year))
	}

	var resp dto.Page[dto.TitleResponse]
	if err := c.do(http.MethodGet, "/titles", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ListReviews(titleID int64, page int) (*dto.Page[dto.ReviewResponse], error) {
	var resp dto.Page[dto.ReviewResponse]
	path := fmt.Sprintf("/titles/%d/reviews", titleID)
	if err := c.do(http.MethodGet, path, pageQuery(page), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CreateReview(titleID int64, text string, score int) (*dto.ReviewResponse, error) {
	var resp dto.ReviewResponse
	path := fmt.Sprintf("/titles/%d/reviews", titleID)
	if err := c.do(http.MethodPost, path, nil, dto.CreateReviewDTO{Text: text, Score: &score}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	return q
}
