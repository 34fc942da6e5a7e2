package model

// OperationID names one of the closed set of supported file operations.
type OperationID string

const (
	// Unrecognized is returned by classification when no rule matches.
	Unrecognized OperationID = ""

	InstallAndRunSetup   OperationID = "install_and_run_setup"
	FormatMarkdown       OperationID = "format_markdown"
	CountWeekday         OperationID = "count_weekday"
	SortContacts         OperationID = "sort_contacts"
	ExtractRecentLogs    OperationID = "extract_recent_logs"
	ExtractHeadings      OperationID = "extract_headings"
	ExtractEmailSender   OperationID = "extract_email_sender"
	CalculateFilteredSum OperationID = "calculate_filtered_sum"
)

// AllOperations returns every known operation in a fixed order.
func AllOperations() []OperationID {
	return []OperationID{
		InstallAndRunSetup,
		FormatMarkdown,
		CountWeekday,
		SortContacts,
		ExtractRecentLogs,
		ExtractHeadings,
		ExtractEmailSender,
		CalculateFilteredSum,
	}
}

// IsKnown reports whether id belongs to the closed operation set.
func (id OperationID) IsKnown() bool {
	for _, known := range AllOperations() {
		if id == known {
			return true
		}
	}
	return false
}

func (id OperationID) String() string {
	if id == Unrecognized {
		return "unrecognized"
	}
	return string(id)
}

// DenyReason is the machine-checkable cause of a sandbox denial.
type DenyReason string

const (
	PathEscape        DenyReason = "path_escape"
	DestructiveIntent DenyReason = "destructive_intent"
)

// SandboxDecision is the outcome of a sandbox check.
type SandboxDecision struct {
	Allowed bool       `json:"allowed"`
	Reason  DenyReason `json:"reason,omitempty"`
	Detail  string     `json:"detail,omitempty"`
}

// Allow returns an approving decision.
func Allow() SandboxDecision {
	return SandboxDecision{Allowed: true}
}

// Deny returns a denial carrying reason and a human-readable detail.
func Deny(reason DenyReason, detail string) SandboxDecision {
	return SandboxDecision{Reason: reason, Detail: detail}
}

// OutcomeKind tags an Outcome.
type OutcomeKind string

const (
	KindSuccess          OutcomeKind = "success"
	KindUnrecognized     OutcomeKind = "unrecognized"
	KindSecurityRejected OutcomeKind = "security_rejected"
	KindOperationFailed  OutcomeKind = "operation_failed"
)

// Outcome is the single result shape every dispatched instruction produces.
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	Message     string      `json:"message"`
	Instruction string      `json:"instruction"`
	Operation   OperationID `json:"operation,omitempty"`
	Reason      DenyReason  `json:"reason,omitempty"`
	Err         error       `json:"-"`
}

// Succeeded wraps an operation's status message.
func Succeeded(instruction string, op OperationID, message string) Outcome {
	return Outcome{
		Kind:        KindSuccess,
		Message:     message,
		Instruction: instruction,
		Operation:   op,
	}
}

// NotRecognized is returned when no classifier rule matched.
func NotRecognized(instruction string) Outcome {
	return Outcome{
		Kind:        KindUnrecognized,
		Message:     "Task not recognized: " + instruction,
		Instruction: instruction,
	}
}

// Rejected is returned when the sandbox denied the instruction.
func Rejected(instruction string, op OperationID, d SandboxDecision) Outcome {
	msg := "Security violation: " + string(d.Reason)
	if d.Detail != "" {
		msg += ": " + d.Detail
	}
	return Outcome{
		Kind:        KindSecurityRejected,
		Message:     msg,
		Instruction: instruction,
		Operation:   op,
		Reason:      d.Reason,
	}
}

// Failed is returned when the operation ran and returned an error.
func Failed(instruction string, op OperationID, err error) Outcome {
	return Outcome{
		Kind:        KindOperationFailed,
		Message:     err.Error(),
		Instruction: instruction,
		Operation:   op,
		Err:         err,
	}
}
