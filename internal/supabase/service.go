/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Compile-time check: *Service must satisfy store.Gateway.
var _ store.Gateway = (*Service)(nil)

const (
	restPrefix = "/rest/v1"
	authPrefix = "/auth/v1"
)

// Service implements store.Gateway against a project's REST and auth admin APIs.
type Service struct {
	client  *http.Client
	baseURL string
	key     string
}

// NewService creates a gateway authenticated with the project's service-role key.
func NewService(cfg models.GatewayConfig) (*Service, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, fmt.Errorf("supabase gateway requires SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid SUPABASE_URL %q: %w", cfg.URL, err)
	}

	httpClient, err := createCustomHttpClient(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create custom http client: %w", err)
	}

	zap.L().Info("Supabase gateway initialized", zap.String("url", cfg.URL))
	return newService(httpClient, cfg.URL, cfg.ServiceKey), nil
}

func newService(client *http.Client, baseURL, key string) *Service {
	return &Service{client: client, baseURL: strings.TrimRight(baseURL, "/"), key: key}
}

func createCustomHttpClient(timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	tr := &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   5,
		ExpectContinueTimeout: 5 * time.Second,
	}

	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

// Close is a no-op (HTTP client needs no teardown).
func (s *Service) Close() {}

type request struct {
	op      string
	method  string
	path    string
	query   url.Values
	body    any
	headers map[string]string
	// notFound is the sentinel reported for a 404.
	notFound error
}

// do sends a request and decodes a JSON response into out when out is non-nil.
func (s *Service) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return store.Validation(req.op, "unable to encode request: %v", err)
		}
		body = bytes.NewReader(payload)
	}

	target := s.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return &store.Error{Kind: store.KindTransport, Op: req.op, Err: err}
	}
	httpReq.Header.Set("apikey", s.key)
	httpReq.Header.Set("Authorization", "Bearer "+s.key)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := s.client.Do(httpReq)
	if err != nil {
		zap.L().Warn("Gateway request failed",
			zap.String("op", req.op),
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err))
		return &store.Error{Kind: store.KindTransport, Op: req.op, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Warn("Failed to close response body", zap.Error(err))
		}
	}()

	zap.L().Debug("Gateway request",
		zap.String("op", req.op),
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		return errorFromResponse(req.op, resp, req.notFound)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &store.Error{Kind: store.KindRemote, Op: req.op, Status: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}
