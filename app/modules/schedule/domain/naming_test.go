package scheduledomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearIncrementNormalizer(t *testing.T) {
	tests := []struct {
		name  string
		delta int
		in    string
		want  string
	}{
		{name: "age level", delta: 1, in: "U12", want: "U13"},
		{name: "birth year", delta: 1, in: "2014 Boys", want: "2015 Boys"},
		{name: "multiple runs", delta: 1, in: "2013/2014 Girls", want: "2014/2015 Girls"},
		{name: "zero padded", delta: 1, in: "Grade 09", want: "Grade 10"},
		{name: "no digits", delta: 1, in: "Open", want: "Open"},
		{name: "two year jump", delta: 2, in: "U9", want: "U11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, YearIncrementNormalizer(tt.delta)(tt.in))
		})
	}
}

func TestNormalizerFor(t *testing.T) {
	n, err := NormalizerFor("", 0)
	require.NoError(t, err)
	assert.Equal(t, "U12", n("U12"))

	n, err = NormalizerFor("none", 1)
	require.NoError(t, err)
	assert.Equal(t, "U12", n("U12"))

	n, err = NormalizerFor("Increment", 0)
	require.NoError(t, err)
	assert.Equal(t, "U13", n("U12"))

	_, err = NormalizerFor("reverse", 1)
	assert.Error(t, err)
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "u13 gold", canonicalName("  U13   GOLD "))
	assert.Equal(t, divisionKey("U13", "Gold"), divisionKey("u13 ", " GOLD"))
	assert.NotEqual(t, divisionKey("U13 Gold", ""), divisionKey("U13", "Gold"))
}
