package app

import "reviewscope/internal/domain"

// Deduplicate keeps the first occurrence per identity key (company, text),
// preserving input order. Running it over already-deduplicated input returns
// the same records with removed == 0.
func Deduplicate(rs []domain.Review) (kept []domain.Review, removed int) {
	seen := make(map[string]struct{}, len(rs))
	kept = make([]domain.Review, 0, len(rs))
	for _, r := range rs {
		k := r.Key()
		if _, dup := seen[k]; dup {
			removed++
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, r)
	}
	return kept, removed
}
