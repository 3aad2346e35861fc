package digest

import "news_digest/internal/domain"

// Pending filters items down to those that still need a digest: the item must
// carry usable content and no digest may exist for its identity yet. Running
// the filter twice over the same inputs yields nothing new.
func Pending(items []domain.SourceItem, existingIDs map[string]struct{}) []domain.SourceItem {
	var out []domain.SourceItem
	for _, item := range items {
		if !item.HasContent() {
			continue
		}
		if _, ok := existingIDs[domain.DigestID(item.SourceType, item.SourceID)]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}
