package cache

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// CacheConfig holds cache configuration
type CacheConfig struct {
	Directory  string
	DefaultTTL time.Duration
	// DiscoveryTTL applies to discovery responses, which are personalised and go stale quickly
	DiscoveryTTL time.Duration
}

// FileCachingTransport implements http.RoundTripper with file-based caching
type FileCachingTransport struct {
	config    CacheConfig
	transport http.RoundTripper
	now       func() time.Time
}

// NewFileCachingTransport creates a new caching transport
func NewFileCachingTransport(config CacheConfig, transport http.RoundTripper) *FileCachingTransport {
	return &FileCachingTransport{
		config:    config,
		transport: transport,
		now:       time.Now,
	}
}

// RoundTrip implements http.RoundTripper with caching. Only GET requests are cached.
func (t *FileCachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.transport.RoundTrip(req)
	}

	cachePath := t.cachePath(makeCacheKey(req))

	if !t.cacheExpired(cachePath, t.ttl(req)) {
		if cachedResp, err := readCacheEntry(cachePath, req); err == nil {
			slog.Debug("cache hit", "url", req.URL.String())
			return cachedResp, nil
		}
	}

	slog.Debug("fetching", "url", req.URL.String())
	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := writeCacheEntry(cachePath, resp); err != nil {
		slog.Warn("failed to write cache entry", "url", req.URL.String(), "error", err)
		return resp, nil
	}

	// dumping consumed the body, serve the copy on disk
	if cachedResp, err := readCacheEntry(cachePath, req); err == nil {
		return cachedResp, nil
	}
	return resp, nil
}

// makeCacheKey names a cache entry `<slug of host and path>-<md5 of url>`
func makeCacheKey(req *http.Request) string {
	md5sum := md5.Sum([]byte(req.URL.String()))
	readable := slug.Make(req.URL.Host + " " + strings.ReplaceAll(req.URL.Path, "/", " "))
	if readable == "" {
		return hex.EncodeToString(md5sum[:])
	}
	return readable + "-" + hex.EncodeToString(md5sum[:])
}

// isDiscovery reports whether req targets the discovery endpoint
func isDiscovery(req *http.Request) bool {
	return strings.Contains(req.URL.Path, "/discovery")
}

func (t *FileCachingTransport) ttl(req *http.Request) time.Duration {
	if isDiscovery(req) {
		return t.config.DiscoveryTTL
	}
	return t.config.DefaultTTL
}

func (t *FileCachingTransport) cachePath(cacheKey string) string {
	return filepath.Join(t.config.Directory, cacheKey)
}

// cacheExpired checks if a cache file is missing or older than ttl
func (t *FileCachingTransport) cacheExpired(path string, ttl time.Duration) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return true
	}
	return t.now().Sub(stat.ModTime()) >= ttl
}

func readCacheEntry(path string, req *http.Request) (*http.Response, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), req)
}

func writeCacheEntry(path string, resp *http.Response) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	dumpedBytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return fmt.Errorf("failed to dump response: %w", err)
	}

	if err := os.WriteFile(path, dumpedBytes, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}
