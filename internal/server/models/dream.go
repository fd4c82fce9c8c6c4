package models

import "time"

// Dream is one journal entry. The JSON form is the one the dream API
// serves; the owner never leaves the server.
type Dream struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	DateKey        string    `json:"dateKey"`
	Input          string    `json:"input"`
	Title          *string   `json:"title,omitempty"`
	Interpretation *string   `json:"interpretation,omitempty"`
	ImageName      *string   `json:"imageName,omitempty"`
	CreatedAt      time.Time `json:"-"`
}

// DreamEntry flags a calendar day that has at least one dream.
type DreamEntry struct {
	DateKey  string `json:"dateKey"`
	HasEntry bool   `json:"hasEntry"`
}

// Interpretation is what a worker attaches to a dream once it is done.
type Interpretation struct {
	Title          string
	Interpretation string
	ImageName      string
}
