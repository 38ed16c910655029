// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package resolver holds what the external lookup clients share: the HTTP
// round trip and the error returned for a failed service call.
package resolver

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
)

// maxErrorBody caps how much of a failed response is kept in a ServiceError.
const maxErrorBody = 512

// ServiceError is a non-2xx answer from an external service.
type ServiceError struct {
	Service    string
	URL        string
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s: %s returned %d %s", e.Service, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// NewHTTPClient returns a pooled client with no retries. A zero timeout
// means none.
func NewHTTPClient(timeoutSeconds int) *http.Client {
	c := cleanhttp.DefaultPooledClient()
	if timeoutSeconds > 0 {
		c.Timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return c
}

// Do sends req and returns the body of a 2xx response. Anything else is a
// *ServiceError; transport failures are wrapped as is.
func Do(client *http.Client, service string, req *http.Request) ([]byte, error) {
	log.Debugf("%s: %s %s", service, req.Method, req.URL.Redacted())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to execute request: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ServiceError{
			Service:    service,
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", service, err)
	}
	return body, nil
}
