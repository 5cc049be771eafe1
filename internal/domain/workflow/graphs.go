package workflow

import (
	"context"
	"strings"
)

type documentStatesKey struct{}

// WithDocumentStates attaches the statuses of a claim's documents to ctx.
// The AUTO_VERIFY guard reads them.
func WithDocumentStates(ctx context.Context, states []State) context.Context {
	return context.WithValue(ctx, documentStatesKey{}, states)
}

func documentStatesFrom(ctx context.Context) []State {
	states, _ := ctx.Value(documentStatesKey{}).([]State)
	return states
}

// AllApproved reports whether the document set is non-empty and every
// document is exactly approved
func AllApproved(states []State) bool {
	if len(states) == 0 {
		return false
	}
	for _, s := range states {
		if s != StateApproved {
			return false
		}
	}
	return true
}

func allDocumentsApproved(ctx context.Context) bool {
	return AllApproved(documentStatesFrom(ctx))
}

// BuildClaimStateMachine creates a state machine configured for the claim pipeline.
//
// Board columns pending, verified, rejected and sent-to-insurer move freely
// between each other. Anything can be archived; archived claims come back
// only through RESTORE. Nothing moves into under-review.
func BuildClaimStateMachine(initialState State) StateMachine {
	builder := NewClaimBuilder()

	board := []struct {
		trigger Trigger
		state   State
	}{
		{TriggerMarkPending, StatePending},
		{TriggerVerify, StateVerified},
		{TriggerReject, StateRejected},
		{TriggerSendToInsurer, StateSentToInsurer},
	}

	for _, from := range []State{StatePending, StateVerified, StateRejected, StateSentToInsurer, StateUnderReview} {
		config := builder.Configure(from)
		for _, to := range board {
			if to.state != from {
				config.Permit(to.trigger, to.state)
			}
		}
		config.Permit(TriggerArchive, StateArchived)
	}

	builder.Configure(StatePending).
		PermitIf(TriggerAutoVerify, StateVerified, allDocumentsApproved)

	builder.Configure(StateArchived).
		Permit(TriggerArchive, StateArchived).
		Permit(TriggerRestore, StatePending)

	return builder.Build(initialState)
}

// BuildDocumentStateMachine creates a state machine configured for document review
func BuildDocumentStateMachine(initialState State) StateMachine {
	builder := NewDocumentBuilder()

	builder.Configure(StatePending).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected)

	builder.Configure(StateApproved).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerReopen, StatePending)

	builder.Configure(StateRejected).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReopen, StatePending)

	builder.Configure(StateUnderReview).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerReopen, StatePending)

	return builder.Build(initialState)
}

// FinalDocumentStatus applies the review comment rule: a document cannot be
// approved or rejected without a comment, so such requests fall back to pending.
func FinalDocumentStatus(requested State, comments string) State {
	if (requested == StateApproved || requested == StateRejected) && strings.TrimSpace(comments) == "" {
		return StatePending
	}
	return requested
}
