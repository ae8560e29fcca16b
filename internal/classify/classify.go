package classify

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category is the catalog grouping a channel is listed under.
type Category string

// Categories in the order they are checked.
const (
	Cricket       Category = "Cricket"
	Movies        Category = "Movies"
	News          Category = "News"
	Music         Category = "Music"
	Kids          Category = "Kids"
	Devotional    Category = "Devotional"
	Entertainment Category = "Entertainment"
)

// Categories lists every category in display order.
var Categories = []Category{Cricket, Movies, News, Music, Kids, Devotional, Entertainment}

// ParseCategory matches a category name case-insensitively.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Quality is the advertised resolution tier.
type Quality string

// Quality tiers.
const (
	QualitySD  Quality = "SD"
	QualityHD  Quality = "HD"
	QualityFHD Quality = "FHD"
	Quality4K  Quality = "4K"
)

// Result is the outcome of classifying one included entry.
type Result struct {
	Category Category
	Quality  Quality
	Priority int
}

// Classify decides whether an entry with the given advertised name and group
// label is included. Excluded entries return false and a zero Result.
func Classify(name, group string) (Result, bool) {
	name = strings.TrimSpace(name)
	group = strings.TrimSpace(group)

	priority, ok := firstMatch(groupRules, group)
	if !ok {
		priority, ok = firstMatch(nameRules, name)
	}
	if !ok {
		return Result{}, false
	}
	if _, vetoed := firstMatch(excludeRules, name, group); vetoed {
		return Result{}, false
	}

	return Result{
		Category: CategoryOf(name, group),
		Quality:  QualityOf(name),
		Priority: priority,
	}, true
}

// CategoryOf returns the first category whose keywords appear in the name or
// group label, defaulting to Entertainment.
func CategoryOf(name, group string) Category {
	if c, ok := firstMatch(categoryRules, name, group); ok {
		return c
	}
	return Entertainment
}

// QualityOf returns the quality tier advertised in the name, defaulting to SD.
func QualityOf(name string) Quality {
	if q, ok := firstMatch(qualityRules, name); ok {
		return q
	}
	return QualitySD
}

var (
	decorPrefix = regexp.MustCompile(`(?i)^\s*(TM\s*:|CRIC\s*\|\||(TAMIL|TA)\s*[:|]+|\|+)\s*`)
	decorMarks  = regexp.MustCompile(`[\[\(]?\b(?i:backup|bkp)\b[\]\)]?|[★☆✪●◆■|]+`)
	spaces      = regexp.MustCompile(`\s+`)
)

// CleanName produces the display name: compatibility-folded (so stylised
// glyphs such as fullwidth letters become plain ASCII), with decorative
// prefixes and markers removed and whitespace collapsed. It never affects
// classification. If cleaning would leave nothing, the trimmed name is kept.
func CleanName(name string) string {
	cleaned := norm.NFKC.String(name)
	for {
		next := decorPrefix.ReplaceAllString(cleaned, "")
		if next == cleaned {
			break
		}
		cleaned = next
	}
	cleaned = decorMarks.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(spaces.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return strings.TrimSpace(name)
	}
	return cleaned
}
