package models

// Summary is the session-wide payment picture shown to every participant.
// It is rebuilt from the stored friends on every read.
type Summary struct {
	SessionID        string  `json:"sessionId"`
	TotalOrderAmount float64 `json:"totalOrderAmount"`

	TotalPaidInstaPay float64 `json:"totalPaidInstaPay"`
	TotalPaidCash     float64 `json:"totalPaidCash"`
	TotalUnpaid       float64 `json:"totalUnpaid"`

	// TotalCollected is TotalPaidInstaPay + TotalPaidCash.
	TotalCollected float64 `json:"totalCollected"`

	// RemainingFromOrder is TotalOrderAmount minus everything friends declared.
	// A non-zero value means the bill and the submitted orders disagree.
	RemainingFromOrder float64 `json:"remainingFromOrder"`

	FriendsCount         int `json:"friendsCount"`
	ExpectedFriendsCount int `json:"expectedFriendsCount"`

	BillImage string   `json:"billImage,omitempty"`
	Friends   []Friend `json:"friends"`
}
