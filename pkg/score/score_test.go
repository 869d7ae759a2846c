package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareIsLexicographic(t *testing.T) {
	assert.True(t, Of(0, -100).BetterThan(Of(-1, 100)), "hard level must dominate soft level")
	assert.True(t, Of(-1, 5).BetterThan(Of(-1, 4)), "soft breaks ties between equal hard levels")
	assert.True(t, HardSoftScore{Init: 0, Hard: -10}.BetterThan(HardSoftScore{Init: -1}), "init level must dominate hard level")
	assert.Equal(t, 0, Of(-2, -3).Compare(Of(-2, -3)))
	assert.True(t, Of(-2, -3).NotWorseThan(Of(-2, -3)))
}

func TestIsFeasible(t *testing.T) {
	assert.True(t, Of(0, -42).IsFeasible())
	assert.False(t, Of(-1, 0).IsFeasible())
	assert.False(t, HardSoftScore{Init: -1}.IsFeasible())
}

func TestArithmetic(t *testing.T) {
	s := Of(-1, 2).Add(OneHard.Multiply(-2)).Sub(OneSoft)
	assert.Equal(t, Of(-3, 1), s)
	assert.Equal(t, Of(3, -1), s.Negate())
}

func TestStringAndParse(t *testing.T) {
	cases := []HardSoftScore{
		Of(0, 0),
		Of(-3, 7),
		{Init: -2, Hard: 0, Soft: -5},
	}

	for _, expected := range cases {
		text := expected.String()
		parsed, err := Parse(text)
		require.NoError(t, err)
		assert.Equal(t, expected, parsed, text)
	}

	assert.Equal(t, "-2init/0hard/-5soft", HardSoftScore{Init: -2, Soft: -5}.String())
	assert.Equal(t, "-1hard/3soft", Of(-1, 3).String())
}

func TestParseRejectsMalformedScores(t *testing.T) {
	for _, text := range []string{"", "1hard", "1soft/2hard", "xhard/1soft", "1/2/3/4"} {
		_, err := Parse(text)
		assert.Error(t, err, text)
	}
}
