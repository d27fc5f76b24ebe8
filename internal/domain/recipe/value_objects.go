package recipe

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Value Objects - small closed vocabularies used by filters

// TimeBucket selects recipes by preparation time
type TimeBucket string

const (
	TimeBucketAll        TimeBucket = "all"
	TimeBucketUltraQuick TimeBucket = "ultra-quick" // <= 10 min
	TimeBucketQuick      TimeBucket = "quick"       // <= 15 min
	TimeBucketMedium     TimeBucket = "medium"      // 16-30 min
	TimeBucketLong       TimeBucket = "long"        // > 30 min
)

// Contains reports whether minutes falls inside the bucket.
// Unknown buckets behave like TimeBucketAll.
func (b TimeBucket) Contains(minutes int) bool {
	switch b {
	case TimeBucketUltraQuick:
		return minutes <= 10
	case TimeBucketQuick:
		return minutes <= 15
	case TimeBucketMedium:
		return minutes > 15 && minutes <= 30
	case TimeBucketLong:
		return minutes > 30
	default:
		return true
	}
}

// CalorieBucket groups recipes by energy content
type CalorieBucket string

const (
	CalorieBucketNone   CalorieBucket = ""
	CalorieBucketLight  CalorieBucket = "light"  // < 300 kcal
	CalorieBucketMedium CalorieBucket = "medium" // 300-600 kcal
	CalorieBucketHigh   CalorieBucket = "high"   // > 600 kcal
)

// Contains reports whether kcal falls inside the bucket
func (b CalorieBucket) Contains(kcal int) bool {
	switch b {
	case CalorieBucketLight:
		return kcal < 300
	case CalorieBucketMedium:
		return kcal >= 300 && kcal <= 600
	case CalorieBucketHigh:
		return kcal > 600
	default:
		return true
	}
}

// DifficultyLevel is the canonical difficulty of a recipe
type DifficultyLevel string

const (
	DifficultyNone     DifficultyLevel = ""
	DifficultyEasy     DifficultyLevel = "easy"
	DifficultyMedium   DifficultyLevel = "medium"
	DifficultyAdvanced DifficultyLevel = "advanced"
)

// difficultySynonyms maps folded spellings to canonical levels
var difficultySynonyms = map[string]DifficultyLevel{
	"easy":          DifficultyEasy,
	"facile":        DifficultyEasy,
	"debutant":      DifficultyEasy,
	"beginner":      DifficultyEasy,
	"tres facile":   DifficultyEasy,
	"medium":        DifficultyMedium,
	"moyen":         DifficultyMedium,
	"moyenne":       DifficultyMedium,
	"intermediate":  DifficultyMedium,
	"intermediaire": DifficultyMedium,
	"advanced":      DifficultyAdvanced,
	"avance":        DifficultyAdvanced,
	"difficile":     DifficultyAdvanced,
	"hard":          DifficultyAdvanced,
	"expert":        DifficultyAdvanced,
}

// ParseDifficulty resolves any known spelling to its canonical level
func ParseDifficulty(raw string) (DifficultyLevel, bool) {
	level, ok := difficultySynonyms[Fold(raw)]
	return level, ok
}

// A chained transformer carries buffers between calls, so each goroutine
// takes its own from the pool.
var foldTransformers = sync.Pool{
	New: func() interface{} {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// Fold lowercases s, trims it and strips diacritics so that "Avancé" and
// "avance" compare equal. Safe for concurrent use.
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := foldTransformers.Get().(transform.Transformer)
	defer foldTransformers.Put(t)

	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
