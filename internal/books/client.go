// Package books wraps the Google Books volumes API.
package books

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bookworm-ai/bookworm/internal/models"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// Client is a Google Books API client.
type Client struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// NewClient creates a new Google Books client. The API key is optional; the
// volumes endpoint works unauthenticated at a lower rate limit.
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// volumesResponse mirrors the subset of the volumes API we consume.
type volumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			Description   string   `json:"description"`
			Categories    []string `json:"categories"`
			ImageLinks    struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
		SaleInfo struct {
			ListPrice *struct {
				Amount       float64 `json:"amount"`
				CurrencyCode string  `json:"currencyCode"`
			} `json:"listPrice"`
		} `json:"saleInfo"`
	} `json:"items"`
}

// Lookup queries the catalog for a title and returns the first match, or
// (nil, nil) when the catalog has no entry. Transport and decoding failures
// are returned as errors; callers treat them as a missing entry and drop
// the candidate.
func (c *Client) Lookup(ctx context.Context, title string) (*models.Book, error) {
	q := url.Values{}
	q.Set("q", title)
	if c.APIKey != "" {
		q.Set("key", c.APIKey)
	}
	reqURL := fmt.Sprintf("%s/volumes?%s", c.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query books API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("books API returned status %d: %s", resp.StatusCode, string(body))
	}

	var volumes volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&volumes); err != nil {
		return nil, fmt.Errorf("failed to decode books API response: %w", err)
	}

	if len(volumes.Items) == 0 {
		return nil, nil
	}

	item := volumes.Items[0]
	info := item.VolumeInfo

	book := &models.Book{
		ID:            item.ID,
		Title:         info.Title,
		Author:        strings.Join(info.Authors, ", "),
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		Thumbnail:     info.ImageLinks.Thumbnail,
		Categories:    info.Categories,
		Price:         models.PriceUnavailable,
	}

	if lp := item.SaleInfo.ListPrice; lp != nil {
		amount := strconv.FormatFloat(lp.Amount, 'f', -1, 64)
		book.Price = strings.TrimSpace(amount + " " + lp.CurrencyCode)
	}

	return book, nil
}
