package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceItem is one raw piece of content pulled from an upstream source.
// Identity is (SourceType, SourceID); everything else is payload.
type SourceItem struct {
	SourceType  string     `db:"source_type"`
	SourceID    string     `db:"source_id"`
	Title       string     `db:"title"`
	URL         string     `db:"url"`
	Content     string     `db:"content"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

// Key returns the composite identity used to join items with digests.
func (s SourceItem) Key() string {
	return DigestID(s.SourceType, s.SourceID)
}

// HasContent reports whether the item carries a summarizable body.
func (s SourceItem) HasContent() bool {
	return strings.TrimSpace(s.Content) != ""
}

// DigestID builds the "type:id" identity shared by items and digests.
func DigestID(articleType, articleID string) string {
	return fmt.Sprintf("%s:%s", articleType, articleID)
}

// SplitDigestID extracts the article type from a digest ID. The ID portion
// may itself contain colons (arXiv GUIDs do), so only the first separator
// counts.
func SplitDigestID(id string) (articleType, articleID string) {
	parts := strings.SplitN(id, ":", 2)
	if len(parts) != 2 {
		return id, ""
	}
	return parts[0], parts[1]
}
