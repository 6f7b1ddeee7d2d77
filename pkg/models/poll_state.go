package models

// PollState is where a status-resource poll currently stands.
type PollState int

const (
	// StatePolling means the operation has not reported a terminal
	// provisioning state yet.
	StatePolling PollState = iota
	// StateFailed means the operation reported a terminal state other
	// than Succeeded.
	StateFailed
	// StateSucceededPendingFetch means the operation succeeded but the
	// final resource document has not been retrieved yet.
	StateSucceededPendingFetch
	// StateSucceededFetched means the operation succeeded and the final
	// resource has been retrieved.
	StateSucceededFetched
)

func (ps PollState) String() string {
	return [...]string{
		"Polling",
		"Failed",
		"Succeeded (fetching resource)",
		"Succeeded",
	}[ps]
}

// Done reports whether no further poll request is useful: either the
// operation failed, or it succeeded and the resource has been fetched.
func (ps PollState) Done() bool {
	return ps == StateFailed || ps == StateSucceededFetched
}
