package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Mario Rossi", CleanString("  Mario Rossi "))
	assert.Equal(t, "mario@example.com", CleanString(" MaRio@Example.com ", true))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 20.98, Round2(209.80*10/100))
	assert.Equal(t, 34.05, Round2(188.82*0.22/1.22))
	assert.Equal(t, -1.23, Round2(-1.2345))
}
