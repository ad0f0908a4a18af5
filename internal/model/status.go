package model

// StatusType tags the VerdictStatus union
type StatusType string

const (
	StatusIdle     StatusType = "idle"
	StatusLoading  StatusType = "loading"
	StatusSuccess  StatusType = "success"
	StatusError    StatusType = "error"
	StatusSkipped  StatusType = "skipped"
	StatusDisabled StatusType = "disabled"
)

// VerdictStatus is the per-tab analysis state shown by the badge and popup.
// Only the fields belonging to Type are set.
type VerdictStatus struct {
	Type    StatusType `json:"type"`
	Verdict *Verdict   `json:"verdict,omitempty"` // success
	Message string     `json:"message,omitempty"` // error
	Reason  string     `json:"reason,omitempty"`  // skipped

	// SettingsHint marks errors the user fixes in settings (missing or invalid key)
	SettingsHint bool `json:"settingsHint,omitempty"`
}

func Idle() VerdictStatus     { return VerdictStatus{Type: StatusIdle} }
func Loading() VerdictStatus  { return VerdictStatus{Type: StatusLoading} }
func Disabled() VerdictStatus { return VerdictStatus{Type: StatusDisabled} }

// Success wraps a verdict in a success status
func Success(v Verdict) VerdictStatus {
	return VerdictStatus{Type: StatusSuccess, Verdict: &v}
}

// Failed builds an error status
func Failed(message string, settingsHint bool) VerdictStatus {
	return VerdictStatus{Type: StatusError, Message: message, SettingsHint: settingsHint}
}

// Skipped builds a skipped status with the rule that matched
func Skipped(reason string) VerdictStatus {
	return VerdictStatus{Type: StatusSkipped, Reason: reason}
}

// MessageType identifies popup/background messages
type MessageType string

const (
	MsgGetStatus     MessageType = "GET_STATUS"
	MsgAnalyzePage   MessageType = "ANALYZE_PAGE"
	MsgReanalyzePage MessageType = "REANALYZE_PAGE"
	MsgToggleEnabled MessageType = "TOGGLE_ENABLED"
	MsgStatusUpdate  MessageType = "STATUS_UPDATE"
)

// Message is a request from the popup, or a status push to it
type Message struct {
	Type    MessageType    `json:"type"`
	Enabled *bool          `json:"enabled,omitempty"` // TOGGLE_ENABLED
	TabID   int            `json:"tabId,omitempty"`   // STATUS_UPDATE
	Status  *VerdictStatus `json:"status,omitempty"`  // STATUS_UPDATE
	Badge   *Badge         `json:"badge,omitempty"`   // STATUS_UPDATE
}

// Ack is the response to TOGGLE_ENABLED
type Ack struct {
	OK bool `json:"ok"`
}
