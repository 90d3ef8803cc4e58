package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_String(t *testing.T) {
	tests := []struct {
		v    Version
		want string
	}{
		{Version{}, "0.0.0"},
		{Version{Major: 0, Minor: 6, Build: 2}, "0.6.2"},
		{Version{Major: 12, Minor: 0, Build: 345}, "12.0.345"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
		})
	}
}

func TestCurrent(t *testing.T) {
	assert.Equal(t, "0.6.2", Current.String())
	assert.Equal(t, "1.2.0", Common.String())
}
