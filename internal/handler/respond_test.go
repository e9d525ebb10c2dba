package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, clampLimit(0, 50, 200))
	assert.Equal(t, 50, clampLimit(-7, 50, 200))
	assert.Equal(t, 1, clampLimit(1, 50, 200))
	assert.Equal(t, 200, clampLimit(200, 50, 200))
	assert.Equal(t, 200, clampLimit(100000, 50, 200))
}
