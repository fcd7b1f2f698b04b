package phh_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/agentholdem/internal/phh"
)

const sampleHand = `variant = "NT"
table = "main"
antes = [0, 0, 0]
blinds_or_straddles = [10, 20, 0]
min_bet = 20
starting_stacks = [1000, 1000, 1000]
finishing_stacks = [990, 980, 1030]
winnings = [0, 0, 50]
actions = ["d dh p1 AhKh", "d dh p2 7c2d", "d dh p3 QsJs", "p3 cbr 60", "p1 f", "p2 f"]
players = ["the_rock", "the_fish", "the_shark"]
hand = "hand_01"
`

func TestDecodeReadsStoredHand(t *testing.T) {
	t.Parallel()

	hand, err := phh.Decode(strings.NewReader(sampleHand))
	require.NoError(t, err)
	assert.Equal(t, "hand_01", hand.HandID)
	assert.Equal(t, []string{"the_rock", "the_fish", "the_shark"}, hand.Players)
	assert.Equal(t, []int{0, 0, 50}, hand.Winnings)
	assert.Len(t, hand.Actions, 6)
}

func TestDecodeRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	for name, doc := range map[string]string{
		"not toml":   "variant = ",
		"no variant": `hand = "x"`,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := phh.Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestReadFileAndRender(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hand_01.phh")
	require.NoError(t, os.WriteFile(path, []byte(sampleHand), 0o644))

	hand, err := phh.ReadFile(path)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, phh.Render(&buf, hand))
	out := buf.String()
	assert.Contains(t, out, "Hand hand_01 at main")
	assert.Contains(t, out, "won 50")
	assert.Contains(t, out, "  p3 cbr 60\n")
}
