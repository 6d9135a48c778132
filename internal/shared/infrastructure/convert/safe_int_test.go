package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		want    uint32
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"positive", 3, 3, false},
		{"max", math.MaxUint32, math.MaxUint32, false},
		{"negative", -1, 0, true},
		{"too large", math.MaxUint32 + 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntToUint32(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntToUint32Clamped(t *testing.T) {
	assert.Equal(t, uint32(0), IntToUint32Clamped(-7))
	assert.Equal(t, uint32(5), IntToUint32Clamped(5))
	assert.Equal(t, uint32(math.MaxUint32), IntToUint32Clamped(math.MaxUint32+10))
}
