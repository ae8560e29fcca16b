// Package classify decides which playlist entries belong in the catalog and
// assigns each one a category, a quality tier, and a priority.
//
// Every decision is an ordered table of (pattern, outcome) rules evaluated by
// firstMatch, so precedence is the table order and nothing else.
package classify

import "regexp"

// Rule pairs a pattern with the outcome it yields when it matches.
type Rule[T any] struct {
	Pattern *regexp.Regexp
	Outcome T
}

// firstMatch returns the outcome of the first rule matching any of the inputs.
func firstMatch[T any](rules []Rule[T], inputs ...string) (T, bool) {
	for _, r := range rules {
		for _, in := range inputs {
			if in != "" && r.Pattern.MatchString(in) {
				return r.Outcome, true
			}
		}
	}
	var zero T
	return zero, false
}

func rule[T any](pattern string, outcome T) Rule[T] {
	return Rule[T]{Pattern: regexp.MustCompile(pattern), Outcome: outcome}
}

// groupRules match the group-title exactly (modulo surrounding whitespace and
// case). Priority is the table rank.
var groupRules = []Rule[int]{
	rule(`(?i)^FREE LIV TV \|\| TAMIL$`, 1),
	rule(`(?i)^FREE LIV TV \|\| TAMIL MOVIES$`, 2),
	rule(`(?i)^FREE LIV TV \|\| TAMIL NEWS$`, 3),
	rule(`(?i)^FREE LIV TV \|\| TAMIL MUSIC$`, 4),
	rule(`(?i)^FREE LIV TV \|\| CRICKET$`, 5),
}

// nameRules match the advertised name. Priority continues after groupRules.
var nameRules = []Rule[int]{
	rule(`^TM\s*:`, 6),
	rule(`(?i)^CRIC\s*\|\|`, 7),
	rule(`(?i)^(TAMIL|TA)\s*[:|]`, 8),
	rule(`(?i)^24/7\b.*\btamil\b`, 9),
	rule(`(?i)\b(movies?|cinema|news|music|songs?|comedy|kids)\b.*\b(tamil|TM)\b|\b(tamil|TM)\b.*\b(movies?|cinema|news|music|songs?|comedy|kids)\b`, 10),
}

// excludeRules veto inclusion regardless of which inclusion rule matched.
var excludeRules = []Rule[struct{}]{
	rule(`(?i)\b(hindi|telugu|malayalam|kannada|bengali|bangla|marathi|punjabi|gujarati|urdu|arabic|sinhala)\b`, struct{}{}),
	rule(`(?i)\b(adult|xxx|porn)\b|18\+`, struct{}{}),
}

var categoryRules = []Rule[Category]{
	rule(`(?i)cricket|^CRIC\s*\|\||\bcric\b|willow|star sports|sony (ten|six)`, Cricket),
	rule(`(?i)\bmovies?\b|cinema|\bfilms?\b|ktv`, Movies),
	rule(`(?i)\bnews\b`, News),
	rule(`(?i)\bmusic\b|\bsongs?\b|isaiaruvi|\bhits\b`, Music),
	rule(`(?i)\bkids\b|cartoon|chutti|pogo|nick|disney|\banimax\b`, Kids),
	rule(`(?i)devotional|bhakti|\bgod\b|spiritual|\baastha\b|sri shankara|\bsvbc\b`, Devotional),
}

var qualityRules = []Rule[Quality]{
	rule(`(?i)\b(4k|uhd|2160p?)\b`, Quality4K),
	rule(`(?i)\b(fhd|full\s*hd|1080[pi]?)\b`, QualityFHD),
	rule(`(?i)\b(hd|720p?)\b`, QualityHD),
}
