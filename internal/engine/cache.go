package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"textchecker/internal/contracts"
)

// DefaultCacheSize is the number of lint results kept by Cached.
const DefaultCacheSize = 256

// CachedEngine memoizes Analyze results by document content and extension.
type CachedEngine struct {
	Engine
	results *lru.Cache[string, contracts.LintResult]
}

// Cached wraps e with an LRU of lint results. A non-positive size means DefaultCacheSize.
func Cached(e Engine, size int) (*CachedEngine, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	results, err := lru.New[string, contracts.LintResult](size)
	if err != nil {
		return nil, fmt.Errorf("create lint cache: %w", err)
	}
	return &CachedEngine{Engine: e, results: results}, nil
}

// Analyze returns the cached result for the same text and extension, or
// analyzes and remembers it. Failed analyses are not cached.
func (c *CachedEngine) Analyze(ctx context.Context, text, ext string) (contracts.LintResult, error) {
	key := cacheKey(text, ext)
	if result, ok := c.results.Get(key); ok {
		return cloneResult(result), nil
	}
	result, err := c.Engine.Analyze(ctx, text, ext)
	if err != nil {
		return result, err
	}
	c.results.Add(key, cloneResult(result))
	return result, nil
}

// Len returns the number of cached results.
func (c *CachedEngine) Len() int {
	return c.results.Len()
}

func cacheKey(text, ext string) string {
	sum := sha256.Sum256([]byte(ext + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func cloneResult(result contracts.LintResult) contracts.LintResult {
	messages := make([]contracts.Message, len(result.Messages))
	copy(messages, result.Messages)
	for i := range messages {
		if fix := messages[i].Fix; fix != nil {
			clone := *fix
			messages[i].Fix = &clone
		}
	}
	result.Messages = messages
	return result
}
