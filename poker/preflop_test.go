package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorizeHole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hole string
		want HoleCategory
	}{
		{"As Ah", CategoryPremium},
		{"Jh Jd", CategoryPremium},
		{"Ac Kh", CategoryPremium},
		{"Tc Th", CategoryStrong},
		{"Ad Jc", CategoryStrong},
		{"9c 9h", CategoryMedium},
		{"Ks Qs", CategoryMedium},
		{"6c 6h", CategoryWeak},
		{"2c 2h", CategoryWeak},
		{"7h 6h", CategoryWeak},
		{"7c 2h", CategoryTrash},
		{"Jh 4c", CategoryTrash},
	}

	for _, tc := range tests {
		t.Run(tc.hole, func(t *testing.T) {
			t.Parallel()
			h, err := ParseHand(tc.hole)
			require.NoError(t, err)
			assert.Equal(t, tc.want, CategorizeHole(h))
		})
	}

	h, err := ParseHand("As Ks Qs")
	require.NoError(t, err)
	assert.Equal(t, CategoryUnknown, CategorizeHole(h))
	assert.Greater(t, CategoryPremium.Strength(), CategoryTrash.Strength())
}
