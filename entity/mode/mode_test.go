package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalText(t *testing.T) {
	tests := []struct {
		text       string
		want       Mode
		streamline bool
		magnitude  bool
	}{
		{"a", All, true, true},
		{"s", Streamlines, true, false},
		{"m", Magnitude, false, true},
	}
	for _, tt := range tests {
		got, err := UnmarshalText(tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.streamline, got.Streamlines())
		assert.Equal(t, tt.magnitude, got.Magnitude())
	}

	_, err := UnmarshalText("v")
	assert.Error(t, err)
}
