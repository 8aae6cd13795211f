// Package source fetches a feature collection from an upstream
// service. The fetch is a single-shot request with a result or a
// failure, performed once at startup.
package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/geoconsole/spatial-canvas/internal/geojson"
	"github.com/geoconsole/spatial-canvas/internal/model"
	"github.com/geoconsole/spatial-canvas/internal/observability"
)

const maxBodyBytes = 32 << 20 // 32 MiB

// NewOutbound builds the shared client for upstream calls.
func NewOutbound() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   128,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: transport, Timeout: 30 * time.Second}
}

// Fetch downloads and decodes a GeoJSON FeatureCollection.
func Fetch(ctx context.Context, cli *http.Client, url string) ([]model.Feature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build source request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	start := time.Now()
	resp, err := cli.Do(req)
	observability.ObserveUpstreamLatency("feature_source", time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("fetch features from %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch features from %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read source body: %w", err)
	}

	features, err := geojson.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("decode source collection: %w", err)
	}
	return features, nil
}
