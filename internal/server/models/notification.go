package models

// Subscription holds a user's push preferences. Users without a stored row
// have both flags off.
type Subscription struct {
	Daily          bool `json:"daily"`
	Interpretation bool `json:"interpretation"`
}
