package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerMarkPending   Trigger = "MARK_PENDING"
	TriggerVerify        Trigger = "VERIFY"
	TriggerAutoVerify    Trigger = "AUTO_VERIFY"
	TriggerReject        Trigger = "REJECT"
	TriggerSendToInsurer Trigger = "SEND_TO_INSURER"
	TriggerArchive       Trigger = "ARCHIVE"
	TriggerRestore       Trigger = "RESTORE"
	TriggerApprove       Trigger = "APPROVE"
	TriggerReopen        Trigger = "REOPEN"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}

// ClaimTriggerFor maps a requested claim status to the trigger that reaches it.
// The current state matters only for pending, which is a restore when the
// claim is archived.
func ClaimTriggerFor(current, target State) (Trigger, bool) {
	switch target {
	case StatePending:
		if current == StateArchived {
			return TriggerRestore, true
		}
		return TriggerMarkPending, true
	case StateVerified:
		return TriggerVerify, true
	case StateRejected:
		return TriggerReject, true
	case StateSentToInsurer:
		return TriggerSendToInsurer, true
	case StateArchived:
		return TriggerArchive, true
	}
	return "", false
}

// DocumentTriggerFor maps a requested document status to its trigger
func DocumentTriggerFor(target State) (Trigger, bool) {
	switch target {
	case StateApproved:
		return TriggerApprove, true
	case StateRejected:
		return TriggerReject, true
	case StatePending:
		return TriggerReopen, true
	}
	return "", false
}
