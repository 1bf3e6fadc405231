package server

import (
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

// responseCache holds encoded responses keyed by snapshot generation and
// request URI. Entries of older generations are never read again and age
// out of the LRU.
type responseCache struct {
	lru *lru.Cache[string, []byte]
}

func newResponseCache(size int) (*responseCache, error) {
	if size <= 0 {
		return &responseCache{}, nil
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create response cache: %w", err)
	}
	return &responseCache{lru: c}, nil
}

func cacheKey(generation uint64, uri string) string {
	return strconv.FormatUint(generation, 10) + " " + uri
}

func (c *responseCache) get(key string) ([]byte, bool) {
	if c.lru == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *responseCache) add(key string, body []byte) {
	if c.lru != nil {
		c.lru.Add(key, body)
	}
}

func (c *responseCache) len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
