package models

import "strings"

// Provisioning states reported by ARM-style services. Comparison is always
// case-insensitive; services disagree on capitalization.
const (
	ProvisioningStateInProgress = "InProgress"
	ProvisioningStateSucceeded  = "Succeeded"
	ProvisioningStateFailed     = "Failed"
	ProvisioningStateCanceled   = "Canceled"
)

// ProvisioningStateEquals compares two provisioning states case-insensitively.
func ProvisioningStateEquals(a, b string) bool {
	return strings.EqualFold(a, b)
}

// IsTerminalProvisioningState reports whether the state means the operation
// has stopped making progress. Anything other than InProgress is terminal.
func IsTerminalProvisioningState(state string) bool {
	return state != "" && !ProvisioningStateEquals(state, ProvisioningStateInProgress)
}
