// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly,
// while allowing extension with additional application-specific behavior.
//
// Example usage:
//
//	client := utils.NewHTTPClient(utils.HTTPClientOptions{BaseURL: "https://cms.example.com"})
//	resp, err := client.R().Get("/api/posts")
type HTTPClient struct {
	*resty.Client
}

// HTTPClientOptions configures NewHTTPClient. Zero values leave resty
// defaults in place.
type HTTPClientOptions struct {
	// BaseURL is prefixed to relative request paths. A trailing slash is
	// removed.
	BaseURL string

	// Timeout bounds every request. Zero means no client-side timeout.
	Timeout time.Duration

	// Headers are sent with every request.
	Headers map[string]string
}

// NewHTTPClient creates and returns a new HTTPClient instance.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state. Retries are disabled: a failed
// request is reported to the caller as is.
func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	client := resty.New().SetRetryCount(0)

	if opts.BaseURL != "" {
		client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if len(opts.Headers) > 0 {
		client.SetHeaders(opts.Headers)
	}

	return &HTTPClient{Client: client}
}
