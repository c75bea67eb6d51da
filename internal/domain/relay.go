package domain

type (
	// RelayCycleResult summarizes one poll of the outbox table.
	RelayCycleResult struct {
		Fetched     int `json:"fetched"`
		Published   int `json:"published"`
		Failed      int `json:"failed"`
		Quarantined int `json:"quarantined"`
	}
)
