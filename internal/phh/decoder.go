package phh

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Decode reads one hand from r.
func Decode(r io.Reader) (*HandHistory, error) {
	var hand HandHistory
	if _, err := toml.NewDecoder(r).Decode(&hand); err != nil {
		return nil, fmt.Errorf("phh: %w", err)
	}
	if hand.Variant == "" {
		return nil, fmt.Errorf("phh: missing variant")
	}
	return &hand, nil
}

// ReadFile decodes the hand stored at path.
func ReadFile(path string) (*HandHistory, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Render writes a short human readable account of the hand.
func Render(w io.Writer, hand *HandHistory) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hand %s", hand.HandID)
	if hand.Table != "" {
		fmt.Fprintf(&b, " at %s", hand.Table)
	}
	if hand.Year > 0 {
		fmt.Fprintf(&b, " (%04d-%02d-%02d %s %s)", hand.Year, hand.Month, hand.Day, hand.Time, hand.TimeZone)
	}
	b.WriteString("\n")

	for k, name := range hand.Players {
		line := fmt.Sprintf("  p%d %-16s", k+1, name)
		if k < len(hand.StartingStacks) {
			line += fmt.Sprintf(" start %6d", hand.StartingStacks[k])
		}
		if k < len(hand.FinishingStacks) {
			line += fmt.Sprintf("  finish %6d", hand.FinishingStacks[k])
		}
		if k < len(hand.Winnings) && hand.Winnings[k] > 0 {
			line += fmt.Sprintf("  won %d", hand.Winnings[k])
		}
		b.WriteString(line + "\n")
	}
	for _, a := range hand.Actions {
		b.WriteString("  " + a + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
