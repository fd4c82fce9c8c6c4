package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/dmitrijs2005/dreamteller/internal/server/models"
	"github.com/dmitrijs2005/dreamteller/internal/server/services"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Data     struct {
		Name string `json:"name"`
	} `json:"data"`
}

type userResponse struct {
	ID               string            `json:"id"`
	Aud              string            `json:"aud"`
	Role             string            `json:"role"`
	Email            string            `json:"email"`
	EmailVerified    bool              `json:"email_verified"`
	EmailConfirmedAt *time.Time        `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]string `json:"user_metadata"`
	CreatedAt        time.Time         `json:"created_at"`
}

type sessionResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	ExpiresAt    int64        `json:"expires_at"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

func toUserResponse(u *models.User) userResponse {
	resp := userResponse{
		ID:            u.ID,
		Aud:           "authenticated",
		Role:          "authenticated",
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		UserMetadata:  map[string]string{"name": u.Name},
		CreatedAt:     u.CreatedAt,
	}
	if u.EmailVerified {
		// Verification time is not stored; creation time stands in for it.
		at := u.CreatedAt
		resp.EmailConfirmedAt = &at
	}
	return resp
}

func writeSession(w http.ResponseWriter, sess *services.Session) {
	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken:  sess.AccessToken,
		TokenType:    "bearer",
		ExpiresIn:    int(sess.ExpiresIn / time.Second),
		ExpiresAt:    time.Now().Add(sess.ExpiresIn).Unix(),
		RefreshToken: sess.RefreshToken,
		User:         toUserResponse(sess.User),
	})
}

// writeIdentityError maps service errors onto auth error codes.
func (s *HTTPServer) writeIdentityError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadJSON):
		writeAuthError(w, http.StatusBadRequest, "bad_json", err.Error())
	case errors.Is(err, services.ErrInvalidEmail):
		writeAuthError(w, http.StatusBadRequest, "email_address_invalid", "Unable to validate email address: invalid format")
	case errors.Is(err, services.ErrWeakPassword):
		writeAuthError(w, http.StatusUnprocessableEntity, "weak_password", "Password should be at least 6 characters.")
	case errors.Is(err, services.ErrEmailExists):
		writeAuthError(w, http.StatusUnprocessableEntity, "email_exists", "User already registered")
	case errors.Is(err, services.ErrUserNotFound):
		writeAuthError(w, http.StatusBadRequest, "user_not_found", "User not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeAuthError(w, http.StatusBadRequest, "invalid_credentials", "Invalid login credentials")
	case errors.Is(err, services.ErrRefreshTokenNotFound), errors.Is(err, common.ErrRefreshTokenExpired):
		writeAuthError(w, http.StatusBadRequest, "refresh_token_not_found", "Invalid Refresh Token: Refresh Token Not Found")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		writeAuthError(w, http.StatusForbidden, "otp_expired", "Email link is invalid or has expired")
	case errors.Is(err, common.ErrorValidation):
		writeAuthError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		s.logger.Error(r.Context(), "identity request failed", "path", r.URL.Path, "error", err)
		writeAuthError(w, http.StatusInternalServerError, "unexpected_failure", "Unexpected failure, please check server logs for more information")
	}
}

func (s *HTTPServer) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	sess, err := s.users.SignUp(r.Context(), in.Email, in.Password, in.Data.Name)
	if err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	writeSession(w, sess)
}

// handleToken serves both the password and the refresh_token grant.
func (s *HTTPServer) handleToken(w http.ResponseWriter, r *http.Request) {
	var (
		sess *services.Session
		err  error
	)
	switch grant := r.URL.Query().Get("grant_type"); grant {
	case "password":
		var in credentials
		if err := decodeJSON(w, r, &in); err != nil {
			s.writeIdentityError(w, r, err)
			return
		}
		sess, err = s.users.SignIn(r.Context(), in.Email, in.Password)
	case "refresh_token":
		var in struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := decodeJSON(w, r, &in); err != nil {
			s.writeIdentityError(w, r, err)
			return
		}
		sess, err = s.users.Refresh(r.Context(), in.RefreshToken)
	default:
		writeAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "unsupported_grant_type")
		return
	}
	if err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	writeSession(w, sess)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Logout(r.Context(), userID(r.Context())); err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleRecover(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	if err := s.users.Recover(r.Context(), in.Email); err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// handleResend re-sends the signup confirmation of the caller. The email in
// the body must match the token owner.
func (s *HTTPServer) handleResend(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Type  string `json:"type"`
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	if in.Type != "signup" {
		writeAuthError(w, http.StatusBadRequest, "validation_failed", "Only signup confirmations can be resent")
		return
	}

	id := userID(r.Context())
	user, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	if in.Email != "" && !strings.EqualFold(strings.TrimSpace(in.Email), user.Email) {
		writeAuthError(w, http.StatusBadRequest, "validation_failed", "Email does not match the signed-in user")
		return
	}
	if err := s.users.ResendVerification(r.Context(), id); err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *HTTPServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sess, err := s.users.Verify(r.Context(), q.Get("type"), q.Get("token"))
	if err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	writeSession(w, sess)
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), userID(r.Context()))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeAuthError(w, http.StatusNotFound, "user_not_found", "User not found")
			return
		}
		s.writeIdentityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	user, err := s.users.UpdatePassword(r.Context(), userID(r.Context()), in.Password)
	if err != nil {
		s.writeIdentityError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
