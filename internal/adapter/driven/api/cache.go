package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/gregjones/httpcache"
)

// credentialCache is an HTTP cache partitioned by credential. Each distinct
// Authorization header gets its own httpcache store, so a response cached
// for one session is never served to another, and every request still
// reaches the fault detector with the token that was current at dispatch.
type credentialCache struct {
	next http.RoundTripper

	mu     sync.Mutex
	stores map[string]*httpcache.Transport
}

func newCredentialCache(next http.RoundTripper) *credentialCache {
	return &credentialCache{
		next:   next,
		stores: make(map[string]*httpcache.Transport),
	}
}

// RoundTrip implements http.RoundTripper.
func (c *credentialCache) RoundTrip(req *http.Request) (*http.Response, error) {
	return c.storeFor(req.Header.Get("Authorization")).RoundTrip(req)
}

func (c *credentialCache) storeFor(authorization string) *httpcache.Transport {
	key := cacheKey(authorization)

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.stores[key]
	if !ok {
		t = httpcache.NewTransport(httpcache.NewMemoryCache())
		t.Transport = c.next
		c.stores[key] = t
	}
	return t
}

// purge drops everything cached for the given bearer token.
func (c *credentialCache) purge(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.stores, cacheKey(bearerPrefix+token))
}

// purgeAll drops every cached response.
func (c *credentialCache) purgeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stores = make(map[string]*httpcache.Transport)
}

// cacheKey hashes the header so tokens are not kept as map keys.
func cacheKey(authorization string) string {
	sum := sha256.Sum256([]byte(authorization))
	return hex.EncodeToString(sum[:])
}
