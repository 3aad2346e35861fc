package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"news_digest/internal/domain"
)

func TestPending(t *testing.T) {
	items := []domain.SourceItem{
		{SourceType: "openai", SourceID: "1", Content: "has content"},
		{SourceType: "openai", SourceID: "2", Content: "   "},
		{SourceType: "anthropic", SourceID: "1", Content: "also content"},
		{SourceType: "techcrunch", SourceID: "9", Content: "digested already"},
	}
	existing := map[string]struct{}{
		"techcrunch:9": {},
	}

	got := Pending(items, existing)
	assert.Len(t, got, 2)
	assert.Equal(t, "openai:1", domain.DigestID(got[0].SourceType, got[0].SourceID))
	assert.Equal(t, "anthropic:1", domain.DigestID(got[1].SourceType, got[1].SourceID))
}

func TestPending_Idempotent(t *testing.T) {
	items := []domain.SourceItem{
		{SourceType: "openai", SourceID: "1", Content: "body"},
		{SourceType: "google", SourceID: "2", Content: "body"},
	}

	first := Pending(items, map[string]struct{}{})

	// Simulate a completed run: everything selected the first time now exists.
	existing := make(map[string]struct{}, len(first))
	for _, item := range first {
		existing[domain.DigestID(item.SourceType, item.SourceID)] = struct{}{}
	}

	assert.Empty(t, Pending(items, existing))
}

func TestPending_EmptyInput(t *testing.T) {
	assert.Empty(t, Pending(nil, map[string]struct{}{}))
}
