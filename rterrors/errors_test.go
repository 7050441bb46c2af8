package rterrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorNames(t *testing.T) {
	tests := []struct {
		err  error
		name string
		code string
	}{
		{ErrUnsupported, "Unsupported", "E1"},
		{ErrDisplacementRange, "DisplacementRange", "E4"},
		{ErrTargetConfig, "TargetConfig", "C1"},
		{ErrLabel, "Label", "P1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, GetErrorName(tc.err))
			assert.Equal(t, tc.code, GetErrorCode(tc.err))
			assert.Equal(t, tc.code+"_"+tc.name, GetErrorCodeWithName(tc.err))
		})
	}
	assert.Equal(t, "No Error", GetErrorName(nil))
}

func TestWrappedName(t *testing.T) {
	err := fmt.Errorf("%w: addbx on avx1", ErrUnsupported)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Equal(t, "Unsupported", GetErrorName(err))
}
