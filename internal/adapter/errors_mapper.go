// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// maxErrorBody bounds the response body quoted in an error message.
const maxErrorBody = 512

func mapHTTPError(resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		body = http.StatusText(status)
	}

	method, path := "", ""
	if resp.Request != nil {
		method = resp.Request.Method
		if resp.Request.RawRequest != nil {
			path = resp.Request.RawRequest.URL.Path
		}
	}

	var sentinel error
	switch status {
	case http.StatusBadRequest:
		sentinel = ErrBadRequest
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusInternalServerError:
		sentinel = ErrInternalServerError
	default:
		sentinel = ErrRemoteRequest
	}

	return fmt.Errorf("%w: %s %s (%d): %s", sentinel, method, path, status, body)
}
