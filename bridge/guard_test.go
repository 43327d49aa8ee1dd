package bridge

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name        string
		snap        Snapshot
		wantCalled  bool
		wantOutcome Outcome
	}{
		{
			name:        "disconnected",
			snap:        Snapshot{State: StateDisconnected},
			wantOutcome: OutcomeDisconnected,
		},
		{
			name:        "unauthenticated",
			snap:        Snapshot{State: StateUnauthenticated},
			wantOutcome: OutcomeUnauthenticated,
		},
		{
			name:        "authenticated",
			snap:        Snapshot{State: StateAuthenticated, Session: newFakeSession()},
			wantCalled:  true,
			wantOutcome: OutcomeOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			res := Guard(staticSource{snap: tt.snap}, "probe", zerolog.Nop(), func(Session) Result[int] {
				called = true
				return succeeded(42)
			})

			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			if tt.wantCalled {
				assert.Equal(t, 42, res.Value)
				return
			}
			assert.Zero(t, res.Value)
			assert.ErrorIs(t, res.Err, ErrPreconditionFailed)
			assert.False(t, res.Usable())
		})
	}
}
