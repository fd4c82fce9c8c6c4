package client

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/dreamteller/internal/client/models"
)

// Endpoint is one logical API operation: a method, a path relative to the
// base origin, and an optional JSON body. Paths are plain string
// substitution; nothing is query-encoded.
type Endpoint struct {
	Method string
	Path   string
	Body   any
}

func (e Endpoint) String() string {
	return e.Method + " " + e.Path
}

// ListDreams lists the dreams recorded for one journal day.
func ListDreams(dateKey string) Endpoint {
	return Endpoint{Method: http.MethodGet, Path: "api/dream/history/" + dateKey}
}

// MonthlyEntries lists per-day presence flags for a month.
func MonthlyEntries(year, month int) Endpoint {
	return Endpoint{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("api/dream/history/entryList/%d/%02d", year, month),
	}
}

// Interpret submits a dream for asynchronous interpretation.
func Interpret(req models.DreamRequest) Endpoint {
	return Endpoint{Method: http.MethodPost, Path: "api/dream/interpret", Body: req}
}

// DreamImage fetches the base64 preview image of a dream.
func DreamImage(dreamID string) Endpoint {
	return Endpoint{Method: http.MethodGet, Path: "api/dream/image/" + dreamID}
}

func GetSubscriptions() Endpoint {
	return Endpoint{Method: http.MethodGet, Path: "api/notification/subscriptions"}
}

func SetSubscriptions(sub models.NotificationSubscription) Endpoint {
	return Endpoint{Method: http.MethodPost, Path: "api/notification/subscriptions", Body: sub}
}

// RegisterFCM registers a push token for the signed-in user.
func RegisterFCM(req models.FCMRequest) Endpoint {
	return Endpoint{Method: http.MethodPost, Path: "api/notification/fcm", Body: req}
}
