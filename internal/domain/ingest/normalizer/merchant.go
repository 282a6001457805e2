// Package normalizer derives merchant tokens and keyword bags from free-text
// statement narratives. Extraction is an ordered rule list, structured
// payment-rail patterns first, so every decision is auditable. A false
// merchant on a malformed narrative is an accepted failure mode, not an
// error.
package normalizer

import (
	"regexp"
	"strings"
)

// railPatterns capture the merchant field from rail-specific narrative
// layouts. First match wins.
var railPatterns = []*regexp.Regexp{
	// UPI/DR/<ref>/<merchant>/<bank>/... and UPI-<ref>-<merchant>-...
	regexp.MustCompile(`(?i)^UPI[/-](?:DR|CR)[/-][^/-]*[/-]([^/-]+)`),
	regexp.MustCompile(`(?i)^UPI[/-][^/-]*[/-]([^/-]+)`),
	// NEFT/RTGS/IMPS-<ref>-<merchant>-...
	regexp.MustCompile(`(?i)^(?:NEFT|RTGS|IMPS)[/-][^/-]*[/-]([^/-]+)`),
	// POS <terminal> <merchant>
	regexp.MustCompile(`(?i)^POS\s+\S+\s+(.+)$`),
}

// Boilerplate tokens stripped from merchant names and keyword bags.
var stopWords = map[string]bool{
	"pvt": true, "ltd": true, "limited": true, "private": true,
	"india": true, "pay": true, "payment": true, "payments": true,
	"the": true, "and": true, "for": true, "llc": true, "inc": true,
	"txn": true, "ref": true, "via": true, "intl": true,
}

var tokenSplit = regexp.MustCompile(`[^A-Za-z0-9]+`)

// ExtractMerchant derives a normalized merchant label from a narrative.
// Structured rail extraction is attempted first; otherwise the first two or
// three meaningful tokens stand in. Returns "" for an empty narrative.
func ExtractMerchant(narrative string) string {
	narrative = strings.TrimSpace(narrative)
	if narrative == "" {
		return ""
	}

	for _, re := range railPatterns {
		if m := re.FindStringSubmatch(narrative); m != nil {
			if name := cleanMerchant(m[1]); name != "" {
				return name
			}
		}
	}

	// Fallback: first tokens longer than two characters.
	var picked []string
	for _, tok := range tokenSplit.Split(narrative, -1) {
		if len(tok) <= 2 || isNumeric(tok) || stopWords[strings.ToLower(tok)] {
			continue
		}
		picked = append(picked, tok)
		if len(picked) == 3 {
			break
		}
	}
	if len(picked) == 3 {
		// Keep two tokens unless the third adds a word of real length.
		if len(picked[2]) <= 3 {
			picked = picked[:2]
		}
	}
	return titleCase(strings.Join(picked, " "))
}

// ExtractKeywords returns the deduplicated, stop-word-filtered keyword bag
// for a narrative, lower-cased, in first-seen order.
func ExtractKeywords(narrative string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range tokenSplit.Split(narrative, -1) {
		kw := strings.ToLower(tok)
		if len(kw) <= 2 || isNumeric(kw) || stopWords[kw] || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

func cleanMerchant(raw string) string {
	var kept []string
	for _, tok := range tokenSplit.Split(raw, -1) {
		if tok == "" || isNumeric(tok) || stopWords[strings.ToLower(tok)] {
			continue
		}
		kept = append(kept, tok)
	}
	return titleCase(strings.Join(kept, " "))
}

func isNumeric(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
