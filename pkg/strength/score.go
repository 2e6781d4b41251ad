package strength

import (
	"math"
)

const (
	maxScore          = 100
	uniqueCharWeight  = 5.0
	variationWeight   = 10
	variationBaseline = 1
)

// Band is the severity classification of a score.
type Band string

const (
	BandError   Band = "error"
	BandWarning Band = "warning"
	BandInfo    Band = "info"
	BandSuccess Band = "success"
)

func (b Band) String() string {
	return string(b)
}

type variation struct {
	name  string
	match func(r rune) bool
}

// evaluated in order, only the number of matches is used
var variations = []variation{
	{name: "digits", match: isDigit},
	{name: "lower", match: isLower},
	{name: "upper", match: isUpper},
	{name: "nonWords", match: isNonWord},
}

// Score returns a heuristic strength of the password in the [0,100] range.
// Every occurrence of a character adds 5 divided by the number of times that
// character was seen so far, and every character class present beyond the
// first adds 10.
func Score(password string) int {
	if password == "" {
		return 0
	}

	seen := make(map[rune]int)
	var score float64
	for _, r := range password {
		seen[r]++
		score += uniqueCharWeight / float64(seen[r])
	}

	score += float64((countVariations(password) - variationBaseline) * variationWeight)

	score = math.Floor(math.Min(maxScore, score))
	if score < 0 {
		return 0
	}
	return int(score)
}

// BandOf maps the score to its severity band.
func BandOf(score int) Band {
	switch {
	case score > 70:
		return BandSuccess
	case score > 50:
		return BandInfo
	case score > 30:
		return BandWarning
	default:
		return BandError
	}
}

// Classes returns the names of the character classes present in the password.
func Classes(password string) []string {
	list := make([]string, 0, len(variations))
	for _, v := range variations {
		if containsAny(password, v.match) {
			list = append(list, v.name)
		}
	}
	return list
}

func countVariations(password string) int {
	return len(Classes(password))
}

func containsAny(s string, fn func(r rune) bool) bool {
	for _, r := range s {
		if fn(r) {
			return true
		}
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func isNonWord(r rune) bool {
	return !isDigit(r) && !isLower(r) && !isUpper(r) && r != '_'
}
