package models

// NotificationSubscription holds the two independent push preferences.
// Writes are last-write-wins.
type NotificationSubscription struct {
	Daily          bool `json:"daily"`
	Interpretation bool `json:"interpretation"`
}

// FCMRequest registers a device push token. It is never read back.
type FCMRequest struct {
	FCMToken string `json:"fcmToken"`
}
