package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() Layout {
	return Layout{
		Name:         "test",
		MinLength:    10,
		SkipPrefixes: []string{"#", "-"},
		Fields: map[string]Field{
			"code":  {0, 4},
			"value": {5, 10},
			"tail":  {12, 40},
		},
		Required: map[string]FieldCheck{"value": IsDigits},
	}
}

func TestLayout_Decode(t *testing.T) {
	row, err := testLayout().Decode("ABCD 00042  trailing text\r\n")
	require.NoError(t, err)
	assert.Equal(t, Row{"code": "ABCD", "value": "00042", "tail": "trailing text"}, row)
}

func TestLayout_Decode_PastEndIsEmpty(t *testing.T) {
	row, err := testLayout().Decode("ABCD 00042")
	require.NoError(t, err)
	assert.Empty(t, row["tail"])
}

func TestLayout_Decode_Rejections(t *testing.T) {
	tests := []struct {
		name string
		line string
		want error
	}{
		{"short line", "ABCD 1", ErrShortLine},
		{"comment", "# ABCD 00042 comment", ErrHeaderLine},
		{"separator", "--------------------", ErrHeaderLine},
		{"non-digit value", "ABCD 00X42 tail", ErrInvalidField},
		{"blank value", "ABCD       tail", ErrInvalidField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testLayout().Decode(tt.line)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLayout_Decode_RecordPrefix(t *testing.T) {
	l := testLayout()
	l.RecordPrefix = "AB"

	_, err := l.Decode("RWY1 00042 tail")
	require.ErrorIs(t, err, ErrNotCandidate)

	_, err = l.Decode("ABCD 00042 tail")
	require.NoError(t, err)
}

func TestLayout_Decode_CountsCharactersNotBytes(t *testing.T) {
	// "É" is two bytes in UTF-8 but one column in the Latin-1 source.
	row, err := testLayout().Decode("ÉCOL 00042  tail")
	require.NoError(t, err)
	assert.Equal(t, "ÉCOL", row["code"])
	assert.Equal(t, "00042", row["value"])
	assert.Equal(t, "tail", row["tail"])
}

func TestLayout_WithOverrides(t *testing.T) {
	base := testLayout()

	l, err := base.WithOverrides(20, map[string]Field{"value": {6, 11}})
	require.NoError(t, err)
	assert.Equal(t, 20, l.MinLength)
	assert.Equal(t, Field{6, 11}, l.Fields["value"])
	assert.Equal(t, Field{5, 10}, base.Fields["value"], "base layout must not change")

	_, err = base.WithOverrides(0, map[string]Field{"bogus": {0, 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")

	_, err = base.WithOverrides(0, map[string]Field{"value": {8, 8}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid range")
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("00200"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("2O0"))
	assert.False(t, IsDigits("-200"))
}
