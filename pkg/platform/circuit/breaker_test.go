package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type outcome int

const (
	fail outcome = iota
	succeed
)

// step is one recorded outcome and what the breaker should report for it.
type step struct {
	outcome    outcome
	usePrimary bool
	opened     bool
	closed     bool
	stateAfter State
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		steps []step
	}{
		{
			name: "opens on the threshold failure",
			opts: []Option{WithFailureThreshold(3)},
			steps: []step{
				{outcome: fail, usePrimary: true, stateAfter: StateClosed},
				{outcome: fail, usePrimary: true, stateAfter: StateClosed},
				{outcome: fail, opened: true, stateAfter: StateOpen},
				{outcome: fail, stateAfter: StateOpen},
			},
		},
		{
			name: "success clears the failure streak",
			opts: []Option{WithFailureThreshold(2)},
			steps: []step{
				{outcome: fail, usePrimary: true, stateAfter: StateClosed},
				{outcome: succeed, usePrimary: true, stateAfter: StateClosed},
				{outcome: fail, usePrimary: true, stateAfter: StateClosed},
				{outcome: fail, opened: true, stateAfter: StateOpen},
			},
		},
		{
			name: "closes after consecutive successes",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{outcome: fail, opened: true, stateAfter: StateOpen},
				{outcome: succeed, stateAfter: StateOpen},
				{outcome: succeed, usePrimary: true, closed: true, stateAfter: StateClosed},
			},
		},
		{
			name: "failure while open restarts the recovery count",
			opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)},
			steps: []step{
				{outcome: fail, opened: true, stateAfter: StateOpen},
				{outcome: succeed, stateAfter: StateOpen},
				{outcome: fail, stateAfter: StateOpen},
				{outcome: succeed, stateAfter: StateOpen},
				{outcome: succeed, usePrimary: true, closed: true, stateAfter: StateClosed},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("redis", tt.opts...)
			for i, st := range tt.steps {
				var usePrimary bool
				var change StateChange
				if st.outcome == fail {
					var useFallback bool
					useFallback, change = b.RecordFailure()
					usePrimary = !useFallback
				} else {
					usePrimary, change = b.RecordSuccess()
				}
				assert.Equal(t, st.usePrimary, usePrimary, "step %d primary", i)
				assert.Equal(t, st.opened, change.Opened, "step %d opened", i)
				assert.Equal(t, st.closed, change.Closed, "step %d closed", i)
				assert.Equal(t, st.stateAfter, b.State(), "step %d state", i)
			}
		})
	}
}

func TestBreakerDefaults(t *testing.T) {
	b := New("redis", WithFailureThreshold(0), WithSuccessThreshold(-1))
	assert.Equal(t, "redis", b.Name())
	assert.False(t, b.IsOpen())

	for range defaultFailureThreshold - 1 {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen(), "non-positive thresholds keep the defaults")
	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreakerReset(t *testing.T) {
	b := New("redis", WithFailureThreshold(1))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.False(t, change.Closed)
}
