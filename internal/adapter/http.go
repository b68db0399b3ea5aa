// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MKhiriev/content-sync/internal/config"
	"github.com/MKhiriev/content-sync/internal/fields"
	"github.com/MKhiriev/content-sync/internal/logger"
	"github.com/MKhiriev/content-sync/internal/utils"
	"github.com/MKhiriev/content-sync/models"
	"github.com/go-resty/resty/v2"
)

type httpRemoteReader struct {
	client *utils.HTTPClient

	// host of the base URL; the API key is only sent there
	host          string
	authorization string

	limit int

	logger *logger.Logger
}

// NewHTTPRemoteReader constructs an HTTP/REST implementation of
// [RemoteReader]. It normalises and validates the base URL from
// remoteCfg.URL, configures the underlying HTTP client with the resolved base
// URL, request timeout and API key header, and pages collection listings with
// limit documents per request (config.DefaultLimit when limit < 1).
//
// Returns an error if remoteCfg.URL is empty or cannot be parsed as a valid
// URL.
func NewHTTPRemoteReader(remoteCfg config.Remote, limit int, logger *logger.Logger) (RemoteReader, error) {
	baseURL, err := normalizeBaseURL(remoteCfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	if limit < 1 {
		limit = config.DefaultLimit
	}

	client := utils.NewHTTPClient(utils.HTTPClientOptions{
		BaseURL: baseURL,
		Timeout: remoteCfg.RequestTimeout,
		Headers: map[string]string{
			"Accept": "application/json",
		},
	})

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	return &httpRemoteReader{
		client:        client,
		host:          u.Host,
		authorization: authorizationHeader(remoteCfg.APIKeyCollection, remoteCfg.APIKey),
		limit:         limit,
		logger:        logger,
	}, nil
}

func authorizationHeader(collection, apiKey string) string {
	return fmt.Sprintf("%s API-Key %s", collection, apiKey)
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	base := strings.TrimRight(u.String(), "/")
	return strings.TrimSuffix(base, "/api"), nil
}

// ListDocuments implements [RemoteReader]. It GETs
// /api/{collection}?page&limit&pagination=true&sort=id and decodes the page
// envelope with numbers preserved as json.Number.
func (h *httpRemoteReader) ListDocuments(ctx context.Context, collection string, page int) (models.DocumentsPage, error) {
	if page < 1 {
		page = 1
	}

	resp, err := h.request(ctx).
		SetPathParam("collection", collection).
		SetQueryParams(map[string]string{
			"page":       strconv.Itoa(page),
			"limit":      strconv.Itoa(h.limit),
			"pagination": "true",
			"sort":       "id",
		}).
		Get("/api/{collection}")
	if err != nil {
		return models.DocumentsPage{}, fmt.Errorf("list %s page %d request: %w", collection, page, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.DocumentsPage{}, err
	}

	var result models.DocumentsPage
	if err = decodeJSON(resp.Body(), &result); err != nil {
		return models.DocumentsPage{}, fmt.Errorf("decode %s page %d: %w", collection, page, err)
	}

	h.logger.Debug().
		Str("collection", collection).
		Int("page", page).
		Int("docs", len(result.Docs)).
		Bool("has_next_page", result.HasNextPage).
		Msg("fetched remote page")

	return result, nil
}

// GetLatestVersion implements [RemoteReader]. It GETs
// /api/{collection}/versions filtered on latest=true and parent=parentID and
// returns the first entry, or nil when there is none.
func (h *httpRemoteReader) GetLatestVersion(ctx context.Context, collection string, parentID any) (*models.VersionSnapshot, error) {
	resp, err := h.request(ctx).
		SetPathParam("collection", collection).
		SetQueryParams(map[string]string{
			"where[latest][equals]": "true",
			"where[parent][equals]": fields.StringifyID(parentID),
		}).
		Get("/api/{collection}/versions")
	if err != nil {
		return nil, fmt.Errorf("latest version of %s/%v request: %w", collection, parentID, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var result models.VersionsPage
	if err = decodeJSON(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode versions of %s/%v: %w", collection, parentID, err)
	}
	if len(result.Docs) == 0 {
		return nil, nil
	}

	return &result.Docs[0], nil
}

// DownloadFile implements [RemoteReader]. Relative paths are resolved against
// the remote base URL; absolute http(s) URLs are requested as they are,
// without the API key when they point at another host.
func (h *httpRemoteReader) DownloadFile(ctx context.Context, path string) ([]byte, string, error) {
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req := h.request(ctx).SetHeader("Accept", "*/*")
	if !h.sameHost(path) {
		req.Header.Del("Authorization")
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, "", fmt.Errorf("download %s request: %w", path, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, "", err
	}

	return resp.Body(), resp.Header().Get("Content-Type"), nil
}

// GetCollections implements [RemoteReader]. It GETs /api/sync.
func (h *httpRemoteReader) GetCollections(ctx context.Context) ([]models.RemoteCollection, error) {
	resp, err := h.request(ctx).Get("/api/sync")
	if err != nil {
		return nil, fmt.Errorf("get remote collections request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var result models.SyncMetadataResponse
	if err = decodeJSON(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode remote collections: %w", err)
	}
	return result.Collections, nil
}

// runIDHeader lets the remote correlate the requests of one sync run.
const runIDHeader = "X-Request-ID"

func (h *httpRemoteReader) request(ctx context.Context) *resty.Request {
	req := h.client.R().
		SetContext(ctx).
		SetHeader("Authorization", h.authorization)
	if runID, ok := utils.GetRunIDFromContext(ctx); ok {
		req.SetHeader(runIDHeader, runID)
	}
	return req
}

// sameHost reports whether path is relative or an absolute URL on the host
// of the base URL.
func (h *httpRemoteReader) sameHost(path string) bool {
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	return u.Host == "" || strings.EqualFold(u.Host, h.host)
}

// decodeJSON keeps numbers as json.Number so numeric ids survive unchanged.
func decodeJSON(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}
