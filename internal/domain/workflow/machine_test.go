package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsClaimState(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePending, true},
		{StateVerified, true},
		{StateRejected, true},
		{StateUnderReview, true},
		{StateSentToInsurer, true},
		{StateArchived, true},
		{StateApproved, false},
		{State("unknown"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsClaimState(); got != tt.expected {
				t.Errorf("State.IsClaimState() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsDocumentState(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePending, true},
		{StateApproved, true},
		{StateRejected, true},
		{StateUnderReview, true},
		{StateVerified, false},
		{StateArchived, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsDocumentState(); got != tt.expected {
				t.Errorf("State.IsDocumentState() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_Label(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected string
	}{
		{"known claim state", StateSentToInsurer, "Enviado a la Aseguradora"},
		{"known document state", StateApproved, "Aprobado"},
		{"unknown passthrough", State("en-espera"), "En-espera"},
		{"empty", State(""), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Label(); got != tt.expected {
				t.Errorf("State.Label() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestState_String(t *testing.T) {
	if got := StateSentToInsurer.String(); got != "sent-to-insurer" {
		t.Errorf("State.String() = %v, want %v", got, "sent-to-insurer")
	}
}

func TestBuilder_ConfigureAccumulates(t *testing.T) {
	builder := NewClaimBuilder()
	builder.Configure(StatePending).Permit(TriggerVerify, StateVerified)
	builder.Configure(StatePending).Permit(TriggerReject, StateRejected)

	machine := builder.Build(StatePending)

	if !machine.CanFire(TriggerVerify) || !machine.CanFire(TriggerReject) {
		t.Errorf("PermittedTriggers() = %v, want both VERIFY and REJECT", machine.PermittedTriggers())
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewClaimBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on a document-only state")
		}
	}()

	builder.Configure(StateApproved)
}

func TestBuilder_BuildPanicsOnInvalidInitialState(t *testing.T) {
	builder := NewDocumentBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Build() should panic on invalid initial state")
		}
	}()

	builder.Build(StateSentToInsurer)
}

func TestStateConfiguration_PermitPanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic on invalid target state")
		}
	}()

	builder.Configure(StatePending).Permit(TriggerVerify, State("INVALID"))
}

func TestStateConfiguration_PermitIf_GuardFails(t *testing.T) {
	builder := NewClaimBuilder()
	builder.Configure(StatePending).
		PermitIf(TriggerAutoVerify, StateVerified, func(ctx context.Context) bool {
			return false
		})

	machine := builder.Build(StatePending)

	err := machine.Fire(context.Background(), TriggerAutoVerify)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}

	if machine.State() != StatePending {
		t.Errorf("State should remain %v after failed Fire(), got %v", StatePending, machine.State())
	}
}

func TestStateMachine_Fire_NoConfiguration(t *testing.T) {
	machine := NewClaimBuilder().Build(StatePending)

	err := machine.Fire(context.Background(), TriggerVerify)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want %v", err, ErrInvalidTransition)
	}

	if len(machine.PermittedTriggers()) != 0 {
		t.Errorf("PermittedTriggers() = %v, want none", machine.PermittedTriggers())
	}
}

func TestStateMachine_Immutability(t *testing.T) {
	builder := NewClaimBuilder()
	builder.Configure(StatePending).Permit(TriggerVerify, StateVerified)

	machine1 := builder.Build(StatePending)
	machine2 := builder.Build(StatePending)

	if err := machine1.Fire(context.Background(), TriggerVerify); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}

	if machine2.State() != StatePending {
		t.Errorf("machine2 state = %v, want %v (machines should be independent)", machine2.State(), StatePending)
	}
	if machine1.State() != StateVerified {
		t.Errorf("machine1 state = %v, want %v", machine1.State(), StateVerified)
	}
}

func TestStateMachine_PermittedTriggersSorted(t *testing.T) {
	builder := NewClaimBuilder()
	builder.Configure(StatePending).
		Permit(TriggerVerify, StateVerified).
		Permit(TriggerArchive, StateArchived).
		Permit(TriggerReject, StateRejected)

	got := builder.Build(StatePending).PermittedTriggers()
	want := []Trigger{TriggerArchive, TriggerReject, TriggerVerify}

	if len(got) != len(want) {
		t.Fatalf("PermittedTriggers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTriggers()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
