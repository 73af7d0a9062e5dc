package randtoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Length(t *testing.T) {
	got, err := New(16)
	assert.NoError(t, err)
	assert.Len(t, got, 16)
}

func TestNew_RejectsNonPositiveLength(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)

	_, err = New(-1)
	assert.Error(t, err)
}

func TestNew_RejectsLengthBeyondUUIDHexWidth(t *testing.T) {
	_, err := New(33)
	assert.Error(t, err)
}

func TestNew_Uniqueness(t *testing.T) {
	const iterations = 10000
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		tok, err := New(Length)
		assert.NoError(t, err)
		assert.False(t, seen[tok], "unexpected collision at iteration %d", i)
		seen[tok] = true
	}
}

func TestMust_PanicsNever(t *testing.T) {
	assert.NotPanics(t, func() {
		Must(Length)
	})
}
