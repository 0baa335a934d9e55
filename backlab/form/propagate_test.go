package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropagateClampsToMaxHorizon(t *testing.T) {
	state := *NewState()
	state.MaxHorizon = 5
	state.HoldDays = 8
	state.HistHorizon = 3

	state = Propagate(state, FieldMaxHorizon)

	assert.Equal(t, 5, state.HoldDays)
	assert.Equal(t, 3, state.HistHorizon, "already within bound, unchanged")
}

func TestPropagateIsIdempotent(t *testing.T) {
	state := *NewState()
	state.MaxHorizon = 7
	state.HoldDays = 12
	state.HistHorizon = 9

	once := Propagate(state, FieldMaxHorizon)
	twice := Propagate(once, FieldMaxHorizon)

	assert.Equal(t, once, twice)
	assert.LessOrEqual(t, twice.HoldDays, twice.MaxHorizon)
	assert.LessOrEqual(t, twice.HistHorizon, twice.MaxHorizon)
}

func TestPropagateIgnoresOtherFields(t *testing.T) {
	state := *NewState()
	state.MaxHorizon = 5
	state.HoldDays = 8

	state = Propagate(state, "hold_days")

	assert.Equal(t, 8, state.HoldDays, "only max_horizon changes trigger clamping")
}
