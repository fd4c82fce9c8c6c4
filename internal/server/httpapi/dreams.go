package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/dmitrijs2005/dreamteller/internal/server/models"
	"github.com/gorilla/mux"
)

func (s *HTTPServer) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadJSON):
		writeText(w, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, common.ErrorValidation):
		writeText(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeText(w, http.StatusNotFound, "Not found")
	default:
		s.logger.Error(r.Context(), "api request failed", "path", r.URL.Path, "error", err)
		writeText(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *HTTPServer) handleListDay(w http.ResponseWriter, r *http.Request) {
	list, err := s.dreams.ListDay(r.Context(), userID(r.Context()), mux.Vars(r)["dateKey"])
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *HTTPServer) handleMonthEntries(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, _ := strconv.Atoi(vars["year"])
	month, _ := strconv.Atoi(vars["month"])

	entries, err := s.dreams.MonthEntries(r.Context(), userID(r.Context()), year, month)
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleInterpret answers with an empty 200; the result is picked up by a
// later history request.
func (s *HTTPServer) handleInterpret(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DateKey string `json:"dateKey"`
		Input   string `json:"input"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	if _, err := s.dreams.Interpret(r.Context(), userID(r.Context()), in.DateKey, in.Input); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.dreams.Image(r.Context(), userID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": img})
}

func (s *HTTPServer) handleGetSubscriptions(w http.ResponseWriter, r *http.Request) {
	sub, err := s.notifications.Subscription(r.Context(), userID(r.Context()))
	if err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *HTTPServer) handleSetSubscriptions(w http.ResponseWriter, r *http.Request) {
	var sub models.Subscription
	if err := decodeJSON(w, r, &sub); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	if err := s.notifications.SetSubscription(r.Context(), userID(r.Context()), sub); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *HTTPServer) handleFCM(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FCMToken string `json:"fcmToken"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	if err := s.notifications.RegisterFCMToken(r.Context(), userID(r.Context()), in.FCMToken); err != nil {
		s.writeAPIError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
