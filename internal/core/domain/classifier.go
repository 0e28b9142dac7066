package domain

import (
	"sort"
	"strings"
)

// Classifier maps sanitised filenames to category labels using the
// static category table. Construct once with NewClassifier; the
// pattern index is built a single time and never mutated afterwards,
// so a Classifier is safe for concurrent use.
type Classifier struct {
	// piPatterns holds the normalised PI-rankings patterns, minus the
	// bare "pi" token which would match unrelated names ("hospitals",
	// "percapita...").
	piPatterns []string

	// patterns holds (normalised pattern, label) pairs for every other
	// category, sorted by pattern length descending.
	patterns []patternRule
}

type patternRule struct {
	pattern string
	label   string
}

// Raw-string markers that identify PI files while separators are still
// present. These are handcrafted exceptions for specific historical
// filenames; keep the list exactly as published, do not generalise.
var piRawMarkers = []string{"_pi_", "_pi.", "pi_2", "contractspi"}

// Compound organisation/department/school tokens ending in "pi",
// matched against the normalised key.
var piCompoundTokens = []string{"allorgdeptpi", "deptschoolpi", "schooldeptpi"}

// NewClassifier builds a classifier over the category table.
func NewClassifier() *Classifier {
	c := &Classifier{}

	for _, cat := range Categories() {
		if cat.Label == PIRankingsLabel {
			for _, p := range cat.Patterns {
				if norm := normalizeKey(p); len(norm) > 2 {
					c.piPatterns = append(c.piPatterns, norm)
				}
			}
			continue
		}
		for _, p := range cat.Patterns {
			c.patterns = append(c.patterns, patternRule{pattern: normalizeKey(p), label: cat.Label})
		}
	}

	// Longest pattern first so specific tokens are tested before the
	// shorter substrings they contain ("medicine" before "med").
	sort.SliceStable(c.patterns, func(i, j int) bool {
		return len(c.patterns[i].pattern) > len(c.patterns[j].pattern)
	})

	return c
}

// Classify returns exactly one category label for a sanitised filename.
// Filenames are free-form: mixed casing, optional '-'/'_' separators,
// optional trailing revision markers. Substring matching over a
// normalised key is the only robust strategy for them.
func (c *Classifier) Classify(filename string) string {
	raw := strings.ToLower(filename)
	norm := normalizeKey(raw)

	// PI precedence: PI files usually contain a department name too, so
	// they must be claimed before the general pass can see them.
	if strings.Contains(norm, "pi") {
		for _, marker := range piRawMarkers {
			if strings.Contains(raw, marker) {
				return PIRankingsLabel
			}
		}
		for _, token := range piCompoundTokens {
			if strings.Contains(norm, token) {
				return PIRankingsLabel
			}
		}
		for _, pattern := range c.piPatterns {
			if strings.Contains(norm, pattern) {
				return PIRankingsLabel
			}
		}
	}

	for _, rule := range c.patterns {
		if strings.Contains(norm, rule.pattern) {
			return rule.label
		}
	}

	return UncategorizedLabel
}

// normalizeKey lowercases and strips '-' and '_' separators.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, "_", "")
}
