package gateway

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aurascan/aurascan/internal/models"
)

func TestFingerprint(t *testing.T) {
	a := fingerprint("image", "payload-a")
	b := fingerprint("image", "payload-b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, fingerprint("image", "payload-a"))
	assert.True(t, strings.HasPrefix(a, "image:"))

	// the same input under a different kind is a different key
	assert.NotEqual(t, a, fingerprint("name", "payload-a"))

	// only the prefix contributes for large payloads
	long := strings.Repeat("x", fingerprintPrefixLen)
	assert.Equal(t, fingerprint("image", long+"tail1"), fingerprint("image", long+"tail2"))
}

func TestCachePurgesOnRead(t *testing.T) {
	c := newResultCache(time.Minute, 4)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	c.put("k", &models.ProductAnalysis{ID: "v"}, t0)
	got, ok := c.get("k", t0.Add(59*time.Second))
	assert.True(t, ok)
	assert.Equal(t, "v", got.ID)

	_, ok = c.get("k", t0.Add(time.Minute))
	assert.False(t, ok, "an entry exactly at TTL is expired")
	assert.Equal(t, 0, c.len(), "expired entries are removed, not just hidden")
}

func TestCacheEvictsOldestAtCapacity(t *testing.T) {
	c := newResultCache(time.Hour, 2)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	c.put("first", &models.ProductAnalysis{ID: "1"}, t0)
	c.put("second", &models.ProductAnalysis{ID: "2"}, t0.Add(time.Second))
	c.put("third", &models.ProductAnalysis{ID: "3"}, t0.Add(2*time.Second))

	assert.Equal(t, 2, c.len())
	_, ok := c.get("first", t0.Add(3*time.Second))
	assert.False(t, ok, "oldest entry evicted")
	_, ok = c.get("third", t0.Add(3*time.Second))
	assert.True(t, ok)
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	c := newResultCache(time.Hour, 2)
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	c.put("a", &models.ProductAnalysis{ID: "1"}, t0)
	c.put("b", &models.ProductAnalysis{ID: "2"}, t0)
	c.put("a", &models.ProductAnalysis{ID: "1b"}, t0.Add(time.Second))

	assert.Equal(t, 2, c.len())
	got, ok := c.get("a", t0.Add(2*time.Second))
	assert.True(t, ok)
	assert.Equal(t, "1b", got.ID)
}

func TestSplitDataURL(t *testing.T) {
	mime, payload, err := splitDataURL("data:image/png;base64,AAAA")
	assert.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, "AAAA", payload)

	for _, bad := range []string{"", "https://x/y.png", "data:image/png;base64,", "data:text/plain;base64,AAAA"} {
		_, _, err := splitDataURL(bad)
		assert.Error(t, err, fmt.Sprintf("input %q", bad))
	}
}
