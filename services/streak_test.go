package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentStreak(t *testing.T) {
	// Newest first: two correct, then a miss.
	assert.Equal(t, 2, CurrentStreak([]bool{true, true, false, true}))

	// Most recent prediction wrong means no current streak.
	assert.Equal(t, 0, CurrentStreak([]bool{false, true, true, true}))

	assert.Equal(t, 0, CurrentStreak(nil))
	assert.Equal(t, 4, CurrentStreak([]bool{true, true, true, true}))
}

func TestBestStreak(t *testing.T) {
	assert.Equal(t, 2, BestStreak([]bool{true, true, false, true}))
	assert.Equal(t, 3, BestStreak([]bool{false, true, true, true}))
	assert.Equal(t, 0, BestStreak(nil))
	assert.Equal(t, 0, BestStreak([]bool{false, false}))

	// Longest run can be anywhere in the sequence.
	assert.Equal(t, 3, BestStreak([]bool{true, false, true, true, true, false, true}))
}
