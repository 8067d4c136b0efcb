package client

// http_client.go = talks to the LibraryHub JSON API on behalf of librarycli.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/models"
)

// HTTPClient is a thin typed wrapper over the API routes.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// constructor for HTTP client
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// set token for HTTP client
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
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
		return err
	}
	defer resp.Body.Close() // Ensure the response body is closed

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e dto.ErrorResponse
		// best effort: the body may not be JSON when a proxy answered
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// login method for HTTP client
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var result dto.LoginResponse
	req := dto.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// SearchBooks lists the catalogue; empty arguments are not sent.
func (c *HTTPClient) SearchBooks(ctx context.Context, search, category, status string) ([]models.Book, error) {
	q := url.Values{}
	for k, v := range map[string]string{"search": search, "category": category, "status": status} {
		if v != "" {
			q.Set(k, v)
		}
	}
	books := make([]models.Book, 0)
	if err := c.do(ctx, http.MethodGet, "/books", q, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *HTTPClient) Borrow(ctx context.Context, bookID int64) (*dto.BorrowResponse, error) {
	var result dto.BorrowResponse
	if err := c.do(ctx, http.MethodPost, "/borrow", nil, dto.BorrowRequest{BookID: bookID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Return(ctx context.Context, recordID int64) (*dto.ReturnResponse, error) {
	var result dto.ReturnResponse
	if err := c.do(ctx, http.MethodPost, "/return", nil, dto.ReturnRequest{RecordID: recordID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) Reserve(ctx context.Context, bookID int64) (*dto.ReserveResponse, error) {
	var result dto.ReserveResponse
	if err := c.do(ctx, http.MethodPost, "/reserve", nil, dto.ReserveRequest{BookID: bookID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) BorrowedBooks(ctx context.Context) ([]dto.BorrowedBookResponse, error) {
	items := make([]dto.BorrowedBookResponse, 0)
	if err := c.do(ctx, http.MethodGet, "/borrowed-books", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}
