package clock

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceRollsMsecAndSec(t *testing.T) {
	c := New()
	c.SetResolution(1)
	for i := 0; i < 2500; i++ {
		c.Advance()
	}
	now := c.Now()
	assert.EqualValues(t, 2500, now.Msec)
	assert.EqualValues(t, 2, now.Sec)
}

func TestAdvanceRespectsTicksPerMs(t *testing.T) {
	c := New()
	c.SetResolution(10)
	for i := 0; i < 25; i++ {
		c.Advance()
	}
	assert.EqualValues(t, 2, c.Now().Msec)
	assert.EqualValues(t, 25, c.Ticks())
}

func TestSetResolutionRejectedAfterFirstAdvance(t *testing.T) {
	c := New()
	c.Advance()
	assert.False(t, c.SetResolution(10))
}

func TestDeadlineOverflowDetection(t *testing.T) {
	c := New()
	c.SetResolution(1)
	c.ticks = math.MaxUint64 - 2 // same-package test: poke the counter near wrap

	target, overflowed := c.Deadline(5)
	assert.True(t, overflowed)
	assert.EqualValues(t, 2, target) // wraps past max back to 2

	target, overflowed = c.Deadline(1)
	assert.False(t, overflowed)
	assert.EqualValues(t, math.MaxUint64-1, target)
}

func TestElapsed(t *testing.T) {
	c := New()
	c.SetResolution(1)
	for i := 0; i < 10; i++ {
		c.Advance()
	}
	assert.True(t, c.Elapsed(10))
	assert.True(t, c.Elapsed(5))
	assert.False(t, c.Elapsed(11))
}
