package marketplace

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

	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
)

const lfDefaultBaseURL = "https://api.lockerfox.com/v2"

// LockerFoxClient lists auctions on the Lockerfox marketplace.
type LockerFoxClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewLockerFoxClient builds a Lockerfox client given an API key.
func NewLockerFoxClient(apiKey string, opts ...Option) (*LockerFoxClient, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}
	cfg := applyOptions(lfDefaultBaseURL, opts)
	return &LockerFoxClient{
		apiKey:     trimmedKey,
		baseURL:    cfg.baseURL,
		httpClient: cfg.httpClient,
	}, nil
}

// CreateListing publishes the auction on Lockerfox.
func (c *LockerFoxClient) CreateListing(ctx context.Context, listing Listing) (*ListingRef, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "lockerfox client not configured")
	}

	payload := map[string]any{
		"externalRef": listing.AuctionNumber,
		"title":       listing.Title,
		"body":        listing.Description,
		"openingBid":  listing.StartingBid.StringFixed(2),
		"opensAt":     listing.StartAt.UTC().Format(time.RFC3339),
		"closesAt":    listing.EndAt.UTC().Format(time.RFC3339),
		"facility":    listing.SiteName,
		"unit":        listing.BoxNumber,
	}
	if listing.ReservePrice != nil {
		payload["reserve"] = listing.ReservePrice.StringFixed(2)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal listing request")
	}

	endpoint := fmt.Sprintf("%s/listings", strings.TrimRight(c.baseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build listing request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

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
		ListingID  string `json:"listingId"`
		ListingURL string `json:"listingUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode listing response")
	}

	return &ListingRef{
		Platform:   PlatformLockerFox,
		ListingID:  apiResp.ListingID,
		ListingURL: apiResp.ListingURL,
	}, nil
}

// CancelListing withdraws a published listing.
func (c *LockerFoxClient) CancelListing(ctx context.Context, listingID string) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "lockerfox client not configured")
	}
	trimmed := strings.TrimSpace(listingID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing ID is required")
	}

	endpoint := fmt.Sprintf("%s/listings/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build cancel request")
	}
	httpReq.Header.Set("X-Api-Key", c.apiKey)

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
