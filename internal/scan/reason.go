package scan

import (
	"fmt"
	"strings"
)

// Action is the outcome of evaluating one entry
type Action string

const (
	ActionDelete Action = "DELETE"
	ActionKeep   Action = "KEEP"
	ActionError  Action = "ERROR"
)

// KeepReason explains why an entry survives a sweep
type KeepReason string

const (
	ReasonNone            KeepReason = ""
	ReasonProtectedName   KeepReason = "protected_name"
	ReasonNotRegular      KeepReason = "not_regular"
	ReasonProtectedSuffix KeepReason = "protected_suffix"
	ReasonUnsafePath      KeepReason = "unsafe_path"
	ReasonOwnArtifact     KeepReason = "own_artifact"
)

// Decision captures what a sweep does with one entry and why.
type Decision struct {
	Entry  Entry
	Action Action
	Reason KeepReason
}

// Keep returns a keep decision for e.
func Keep(e Entry, reason KeepReason) Decision {
	return Decision{Entry: e, Action: ActionKeep, Reason: reason}
}

// Delete returns a delete decision for e.
func Delete(e Entry) Decision {
	return Decision{Entry: e, Action: ActionDelete}
}

// ToLogString formats the decision for structured logging.
// Example: "KEEP name=Proof.v kind=file reason=protected_suffix"
func (d Decision) ToLogString() string {
	parts := []string{
		string(d.Action),
		fmt.Sprintf("name=%s", d.Entry.Name),
		fmt.Sprintf("kind=%s", d.Entry.Kind),
	}
	if d.Reason != ReasonNone {
		parts = append(parts, fmt.Sprintf("reason=%s", d.Reason))
	}
	return strings.Join(parts, " ")
}

// ToHumanReadable formats the reason for display.
func (r KeepReason) ToHumanReadable() string {
	switch r {
	case ReasonProtectedName:
		return "Protected file name"
	case ReasonNotRegular:
		return "Not a regular file"
	case ReasonProtectedSuffix:
		return "Proof source file"
	case ReasonUnsafePath:
		return "Rejected by safety validator"
	case ReasonOwnArtifact:
		return "File used by coq-sweep itself"
	case ReasonNone:
		return "Not kept"
	default:
		return "Unknown reason"
	}
}
