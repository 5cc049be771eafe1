package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimStateMachine_PipelinePath(t *testing.T) {
	ctx := context.Background()
	machine := BuildClaimStateMachine(StatePending)

	require.NoError(t, machine.Fire(ctx, TriggerVerify))
	require.NoError(t, machine.Fire(ctx, TriggerSendToInsurer))
	assert.Equal(t, StateSentToInsurer, machine.State())

	require.NoError(t, machine.Fire(ctx, TriggerArchive))
	assert.Equal(t, StateArchived, machine.State())
}

func TestClaimStateMachine_ArchiveFromEveryState(t *testing.T) {
	for _, s := range ClaimStates() {
		t.Run(string(s), func(t *testing.T) {
			machine := BuildClaimStateMachine(s)
			require.NoError(t, machine.Fire(context.Background(), TriggerArchive))
			assert.Equal(t, StateArchived, machine.State())
		})
	}
}

func TestClaimStateMachine_RestoreOnlyFromArchived(t *testing.T) {
	archived := BuildClaimStateMachine(StateArchived)
	require.NoError(t, archived.Fire(context.Background(), TriggerRestore))
	assert.Equal(t, StatePending, archived.State())

	archived = BuildClaimStateMachine(StateArchived)
	err := archived.Fire(context.Background(), TriggerVerify)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	pending := BuildClaimStateMachine(StatePending)
	assert.False(t, pending.CanFire(TriggerRestore))
}

func TestClaimStateMachine_NothingEntersUnderReview(t *testing.T) {
	for _, s := range ClaimStates() {
		assert.NotContains(t, BuildClaimStateMachine(s).Targets(), StateUnderReview, "from %s", s)
	}

	out := BuildClaimStateMachine(StateUnderReview).Targets()
	assert.Contains(t, out, StatePending)
	assert.Contains(t, out, StateArchived)
}

func TestClaimStateMachine_AutoVerifyGuard(t *testing.T) {
	tests := []struct {
		name    string
		docs    []State
		wantErr error
		want    State
	}{
		{"all approved", []State{StateApproved, StateApproved}, nil, StateVerified},
		{"one pending", []State{StateApproved, StatePending}, ErrGuardFailed, StatePending},
		{"one rejected", []State{StateRejected, StateApproved}, ErrGuardFailed, StatePending},
		{"no documents", nil, ErrGuardFailed, StatePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			machine := BuildClaimStateMachine(StatePending)
			err := machine.Fire(WithDocumentStates(context.Background(), tt.docs), TriggerAutoVerify)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, machine.State())
		})
	}
}

func TestClaimStateMachine_AutoVerifyOnlyFromPending(t *testing.T) {
	ctx := WithDocumentStates(context.Background(), []State{StateApproved})
	machine := BuildClaimStateMachine(StateRejected)

	assert.ErrorIs(t, machine.Fire(ctx, TriggerAutoVerify), ErrInvalidTransition)
	assert.Equal(t, StateRejected, machine.State())
}

func TestDocumentStateMachine_Transitions(t *testing.T) {
	ctx := context.Background()
	machine := BuildDocumentStateMachine(StatePending)

	require.NoError(t, machine.Fire(ctx, TriggerReject))
	require.NoError(t, machine.Fire(ctx, TriggerApprove))
	require.NoError(t, machine.Fire(ctx, TriggerReopen))
	assert.Equal(t, StatePending, machine.State())

	assert.ErrorIs(t, machine.Fire(ctx, TriggerReopen), ErrInvalidTransition)
}

func TestDocumentStateMachine_UnderReviewUnreachable(t *testing.T) {
	for _, s := range []State{StatePending, StateApproved, StateRejected} {
		assert.NotContains(t, BuildDocumentStateMachine(s).Targets(), StateUnderReview)
	}
}

func TestFinalDocumentStatus(t *testing.T) {
	tests := []struct {
		name      string
		requested State
		comments  string
		want      State
	}{
		{"approve without comment", StateApproved, "", StatePending},
		{"approve with whitespace", StateApproved, "  \t\n", StatePending},
		{"reject without comment", StateRejected, "", StatePending},
		{"reject with reason", StateRejected, "looks blurry", StateRejected},
		{"approve with note", StateApproved, "ok", StateApproved},
		{"pending stays pending", StatePending, "", StatePending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FinalDocumentStatus(tt.requested, tt.comments))
		})
	}
}

func TestClaimTriggerFor(t *testing.T) {
	trig, ok := ClaimTriggerFor(StateArchived, StatePending)
	assert.True(t, ok)
	assert.Equal(t, TriggerRestore, trig)

	trig, ok = ClaimTriggerFor(StateVerified, StatePending)
	assert.True(t, ok)
	assert.Equal(t, TriggerMarkPending, trig)

	_, ok = ClaimTriggerFor(StatePending, StateUnderReview)
	assert.False(t, ok)
}
