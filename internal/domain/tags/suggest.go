package tags

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggestion ranks a tag against an uncategorized narrative. Lower Rank is a
// closer match.
type Suggestion struct {
	TagID   string
	TagName string
	Keyword string
	Rank    int
}

// Suggest ranks tags for a narrative that the deterministic matcher left
// uncategorized. It fuzzy-matches each keyword against the narrative tokens
// and keeps the best rank per tag. Suggestions are advisory only and are
// never applied automatically.
func (m *Matcher) Suggest(narrative string, limit int) []Suggestion {
	tokens := strings.FieldsFunc(strings.ToLower(narrative), isSeparator)
	if len(tokens) == 0 {
		return nil
	}

	best := make(map[int]Suggestion)
	for kwIdx, kw := range m.keywords {
		for _, token := range tokens {
			rank := fuzzy.RankMatchNormalizedFold(token, kw)
			if rank < 0 {
				continue
			}
			ti := m.keywordTag[kwIdx]
			if cur, ok := best[ti]; !ok || rank < cur.Rank {
				best[ti] = Suggestion{
					TagID:   m.tags[ti].ID,
					TagName: m.tags[ti].Name,
					Keyword: kw,
					Rank:    rank,
				}
			}
		}
	}

	out := make([]Suggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank < out[j].Rank
		}
		return out[i].TagName < out[j].TagName
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
