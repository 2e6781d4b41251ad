package strength

import (
	"fmt"
	"strings"
)

const (
	barFull  = "█"
	barEmpty = "░"

	defaultBarWidth = 20
)

// Reading is what the meter displays for a single password value.
type Reading struct {
	Score int    `json:"score" yaml:"score"`
	Band  Band   `json:"band" yaml:"band"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Read scores the password locally and pairs it with the remote label, if any.
func Read(password, label string) Reading {
	s := Score(password)
	return Reading{
		Score: s,
		Band:  BandOf(s),
		Label: label,
	}
}

// Fraction is the fill proportion of the bar.
func (r Reading) Fraction() float64 {
	return float64(r.Score) / maxScore
}

// Caption prefers the server label and falls back to the local percentage.
func (r Reading) Caption() string {
	if r.Label != "" {
		return r.Label
	}
	return fmt.Sprintf("%d%%", r.Score)
}

// Render draws the bar as plain text, for output that is not a terminal.
func (r Reading) Render(width int) string {
	if width <= 0 {
		width = defaultBarWidth
	}

	filled := r.Score * width / maxScore
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(strings.Repeat(barFull, filled))
	sb.WriteString(strings.Repeat(barEmpty, width-filled))
	sb.WriteString("] ")
	sb.WriteString(r.Caption())
	sb.WriteString(" (")
	sb.WriteString(r.Band.String())
	sb.WriteString(")")
	return sb.String()
}
