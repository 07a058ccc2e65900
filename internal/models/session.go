package models

import "time"

// Session represents one shared bill that friends join by link.
// The fee parameters are read by every join to compute that friend's share.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string `json:"sessionId"`

	// SessionLink is the shareable join URL. It is derived on read, never stored.
	SessionLink string `json:"sessionLink,omitempty"`

	// TotalOrderAmount is the amount printed on the bill. It is never edited
	// after creation.
	TotalOrderAmount float64 `json:"totalOrderAmount"`

	// TaxPercentage and ServicePercentage are applied to each friend's subtotal.
	// Nil means the bill has no such charge.
	TaxPercentage     *float64 `json:"taxPercentage,omitempty"`
	ServicePercentage *float64 `json:"servicePercentage,omitempty"`

	// DeliveryFee is split evenly between the friends sharing delivery.
	DeliveryFee *float64 `json:"deliveryFee,omitempty"`

	// NumberOfFriends is the expected participant count, if the initiator gave one.
	NumberOfFriends *int `json:"numberOfFriends,omitempty"`

	// InstaPayURL is where friends paying by InstaPay send their money.
	InstaPayURL string `json:"instaPayURL,omitempty"`

	// BillImage is the public URL of the uploaded bill photo.
	BillImage string `json:"billImage,omitempty"`

	// BillImageKey is the image store key for BillImage, used to remove the
	// object when the session is deleted.
	BillImageKey string `json:"-"`

	// Friends is populated by reads that load the full session.
	Friends []Friend `json:"friends,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ExpectedFriends returns NumberOfFriends, or 0 when it was not set.
func (s *Session) ExpectedFriends() int {
	if s.NumberOfFriends == nil {
		return 0
	}
	return *s.NumberOfFriends
}
