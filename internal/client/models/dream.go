// Package models defines the journal entities exchanged with the dream API.
//
// Every entity that arrives over the wire implements Validate, which the
// transport calls right after JSON decoding; a validation failure is treated
// the same as malformed JSON.
package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingID    = errors.New("dream id is required")
	ErrMissingInput = errors.New("dream input is required")
)

// Image names used when a dream carries no explicit imageName.
const (
	ImagePending     = "nodream"
	ImageInterpreted = "dream1"
	DefaultTitle     = "Dream"
)

// Dream is one journal entry. Interpretation stays nil until the server has
// finished interpreting the input asynchronously.
type Dream struct {
	ID             string  `json:"id"`
	DateKey        string  `json:"dateKey"`
	Input          string  `json:"input"`
	Title          *string `json:"title,omitempty"`
	Interpretation *string `json:"interpretation,omitempty"`
	ImageName      *string `json:"imageName,omitempty"`
}

func (d Dream) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return ErrMissingID
	}
	if !ValidDateKey(d.DateKey) {
		return fmt.Errorf("dream %s: %w", d.ID, ErrInvalidDateKey)
	}
	if strings.TrimSpace(d.Input) == "" {
		return fmt.Errorf("dream %s: %w", d.ID, ErrMissingInput)
	}
	return nil
}

// IsInterpreted reports whether the server has attached an interpretation.
func (d Dream) IsInterpreted() bool {
	return d.Interpretation != nil && strings.TrimSpace(*d.Interpretation) != ""
}

func (d Dream) TitleOrFallback() string {
	if d.Title == nil || strings.TrimSpace(*d.Title) == "" {
		return DefaultTitle
	}
	return *d.Title
}

func (d Dream) ImageNameOrFallback() string {
	if d.ImageName != nil && *d.ImageName != "" {
		return *d.ImageName
	}
	if d.IsInterpreted() {
		return ImageInterpreted
	}
	return ImagePending
}

// DreamList is the decoded body of the per-day history endpoint.
type DreamList []Dream

func (l DreamList) Validate() error {
	for i := range l {
		if err := l[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DreamEntry flags whether a calendar day has at least one dream.
type DreamEntry struct {
	DateKey  string `json:"dateKey"`
	HasEntry bool   `json:"hasEntry"`
}

func (e DreamEntry) Validate() error {
	if !ValidDateKey(e.DateKey) {
		return ErrInvalidDateKey
	}
	return nil
}

// DreamEntryList is the decoded body of the monthly entry-list endpoint.
type DreamEntryList []DreamEntry

func (l DreamEntryList) Validate() error {
	for i := range l {
		if err := l[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DreamRequest submits a new dream for interpretation. The server answers
// with an empty body.
type DreamRequest struct {
	DateKey string `json:"dateKey"`
	Input   string `json:"input"`
}

// DreamImage carries a base64-encoded preview image. The payload is not
// validated here; an undecodable image is the consumer's concern.
type DreamImage struct {
	Image string `json:"image"`
}

// Empty is the result type for calls that expect no response body.
type Empty struct{}
