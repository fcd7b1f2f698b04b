package gameid

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsValidAndUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New(Table)
		require.True(t, strings.HasPrefix(id, "tbl_"))
		require.NoError(t, Validate(id))
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestFromReaderIsDeterministic(t *testing.T) {
	t.Parallel()

	src := bytes.Repeat([]byte{0xAB}, 32)
	a, err := FromReader(Hand, bytes.NewReader(src))
	require.NoError(t, err)
	b, err := FromReader(Hand, bytes.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NoError(t, Validate(a))

	_, err = FromReader(Hand, bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		ok   bool
	}{
		{"bare body", "01h2xcejqtf2nbrexx3vqjhp41", true},
		{"with prefix", "tbl_01h2xcejqtf2nbrexx3vqjhp41", true},
		{"too short", "tbl_01h2", false},
		{"overflowing first char", "z1h2xcejqtf2nbrexx3vqjhp41", false},
		{"bad alphabet", "01h2xcejqtf2nbrexx3vqjhpu1", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tc.id)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
