package tags

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/ledgerlens/ledgerlens/internal/domain/transaction"
)

// Matcher assigns tags to transactions by keyword containment. The forward
// direction (keyword inside narrative) is a single Aho-Corasick pass over
// every keyword of every tag; the reverse direction (narrative token inside
// keyword, abbreviation tolerance) is checked per token. Matching is fully
// deterministic.
type Matcher struct {
	tags       []Tag
	keywords   []string // lower-cased, in tag order
	keywordTag []int    // keyword index -> tags index
	forward    *ahocorasick.Matcher
}

// NewMatcher builds a matcher over a tag set. Tags with no keywords are
// skipped.
func NewMatcher(tagSet []Tag) *Matcher {
	m := &Matcher{tags: tagSet}
	for ti, tag := range tagSet {
		for _, kw := range tag.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			m.keywords = append(m.keywords, kw)
			m.keywordTag = append(m.keywordTag, ti)
		}
	}
	if len(m.keywords) > 0 {
		m.forward = ahocorasick.NewStringMatcher(m.keywords)
	}
	return m
}

// Match returns the IDs of all tags whose keywords hit the narrative, in tag
// declaration order. Each tag appears at most once regardless of how many of
// its keywords matched.
func (m *Matcher) Match(narrative string) []string {
	if m.forward == nil {
		return nil
	}
	lower := strings.ToLower(narrative)
	hit := make(map[int]bool)

	// Forward: keyword contained in narrative, one pass for all keywords.
	for _, kwIdx := range m.forward.Match([]byte(lower)) {
		hit[m.keywordTag[kwIdx]] = true
	}

	// Reverse: a narrative token contained in a keyword covers truncated
	// or abbreviated narratives ("netfli" for "netflix").
	for _, token := range strings.FieldsFunc(lower, isSeparator) {
		if len(token) < 3 {
			continue
		}
		for kwIdx, kw := range m.keywords {
			if hit[m.keywordTag[kwIdx]] {
				continue
			}
			if strings.Contains(kw, token) {
				hit[m.keywordTag[kwIdx]] = true
			}
		}
	}

	if len(hit) == 0 {
		return nil
	}
	ids := make([]string, 0, len(hit))
	for ti, tag := range m.tags {
		if hit[ti] {
			ids = append(ids, tag.ID)
		}
	}
	return ids
}

// Recategorize re-derives TagIDs from scratch for every transaction not
// flagged ManualTagOverride and returns a freshly built slice; the input is
// never mutated, so callers can swap the whole collection atomically.
// Manually overridden transactions pass through untouched.
func (m *Matcher) Recategorize(txs []transaction.Transaction) []transaction.Transaction {
	out := make([]transaction.Transaction, len(txs))
	for i, tx := range txs {
		if tx.ManualTagOverride {
			out[i] = tx
			continue
		}
		tx.TagIDs = m.Match(tx.Narrative)
		out[i] = tx
	}
	return out
}

func isSeparator(r rune) bool {
	return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
}
