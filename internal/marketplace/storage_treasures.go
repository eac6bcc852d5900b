package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
)

const (
	stDefaultBaseURL             = "https://api.storagetreasures.com/v1"
	responseBodyReadLimit  int64 = 1024
	defaultMarketplaceTimeout    = 10 * time.Second
)

var errAPIKeyRequired = errors.New("marketplace api key is required")

// StorageTreasuresClient lists auctions on the StorageTreasures marketplace.
type StorageTreasuresClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	baseURL    string
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func applyOptions(defaultBaseURL string, opts []Option) clientConfig {
	cfg := clientConfig{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultMarketplaceTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.httpClient == nil {
		cfg.httpClient = &http.Client{Timeout: defaultMarketplaceTimeout}
	}
	if cfg.baseURL == "" {
		cfg.baseURL = defaultBaseURL
	}
	return cfg
}

// NewStorageTreasuresClient builds a StorageTreasures client given an API key.
func NewStorageTreasuresClient(apiKey string, opts ...Option) (*StorageTreasuresClient, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}
	cfg := applyOptions(stDefaultBaseURL, opts)
	return &StorageTreasuresClient{
		apiKey:     trimmedKey,
		baseURL:    cfg.baseURL,
		httpClient: cfg.httpClient,
	}, nil
}

// CreateListing publishes the auction on StorageTreasures.
func (c *StorageTreasuresClient) CreateListing(ctx context.Context, listing Listing) (*ListingRef, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storage treasures client not configured")
	}

	payload := map[string]any{
		"reference":    listing.AuctionNumber,
		"title":        listing.Title,
		"description":  listing.Description,
		"starting_bid": listing.StartingBid.StringFixed(2),
		"starts_at":    listing.StartAt.UTC().Format(time.RFC3339),
		"ends_at":      listing.EndAt.UTC().Format(time.RFC3339),
		"facility":     listing.SiteName,
		"unit_number":  listing.BoxNumber,
	}
	if listing.ReservePrice != nil {
		payload["reserve_price"] = listing.ReservePrice.StringFixed(2)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal listing request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("auctions"), bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build listing request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute listing request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "listing request failed")
	}

	var apiResp struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode listing response")
	}

	return &ListingRef{
		Platform:   PlatformStorageTreasures,
		ListingID:  apiResp.ID,
		ListingURL: apiResp.URL,
	}, nil
}

// CancelListing withdraws a published listing.
func (c *StorageTreasuresClient) CancelListing(ctx context.Context, listingID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "storage treasures client not configured")
	}
	trimmed := strings.TrimSpace(listingID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing ID is required")
	}

	endpoint := fmt.Sprintf("%s/auctions/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build cancel request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute cancel request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "cancel request failed")
	}
	return nil
}

func (c *StorageTreasuresClient) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.baseURL, "/"), strings.TrimLeft(path, "/"))
}
