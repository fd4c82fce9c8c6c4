package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/dmitrijs2005/dreamteller/internal/dbx"
	"github.com/dmitrijs2005/dreamteller/internal/logging"
	"github.com/dmitrijs2005/dreamteller/internal/server/auth"
	"github.com/dmitrijs2005/dreamteller/internal/server/config"
	"github.com/dmitrijs2005/dreamteller/internal/server/models"
	"github.com/dmitrijs2005/dreamteller/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dreamteller/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	refreshTokenBytes = 32
	actionTokenTTL    = 24 * time.Hour
)

// Session is what a successful sign-in hands back.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	User         *models.User
}

type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	mailer                       Mailer
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, mailer Mailer, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		mailer:                       mailer,
		logger:                       logger.With("module", "users"),
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// SignUp creates an account, mails a verification link and signs the new
// user in.
func (s *UserService) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var sess *Session
	err = runInTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Email:        email,
			Name:         strings.TrimSpace(name),
			PasswordHash: hash,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return ErrEmailExists
			}
			return err
		}
		sess, err = s.issueSession(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.sendActionMail(ctx, sess.User, auth.ActionVerifyEmail)
	return sess, nil
}

func (s *UserService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repomanager.Users(handle(s.db)).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, handle(s.db), user)
}

// Refresh rotates a refresh token. The old token is gone once this returns,
// whatever the outcome of issuing the new pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	token, err := s.repomanager.RefreshTokens(handle(s.db)).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}
	if token.Expires.Before(time.Now()) {
		_ = s.repomanager.RefreshTokens(handle(s.db)).Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	var sess *Session
	err = runInTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("delete refresh token: %w", err)
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		sess, err = s.issueSession(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout revokes every refresh token of the user. Access tokens stay valid
// until they expire.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	return s.repomanager.RefreshTokens(handle(s.db)).DeleteByUser(ctx, userID)
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(handle(s.db)).GetByID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// Recover mails a recovery link. Unknown addresses are not reported so the
// endpoint does not reveal which accounts exist.
func (s *UserService) Recover(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.repomanager.Users(handle(s.db)).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "recovery for unknown email")
			return nil
		}
		return err
	}
	s.sendActionMail(ctx, user, auth.ActionRecovery)
	return nil
}

// ResendVerification mails a new verification link unless the address is
// already verified.
func (s *UserService) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	s.sendActionMail(ctx, user, auth.ActionVerifyEmail)
	return nil
}

// Verify redeems a mailed link and signs its owner in. A signup link also
// marks the address verified.
func (s *UserService) Verify(ctx context.Context, action, token string) (*Session, error) {
	if action != auth.ActionVerifyEmail && action != auth.ActionRecovery {
		return nil, fmt.Errorf("%w: unknown verification type %q", common.ErrorValidation, action)
	}
	userID, err := auth.ParseActionToken(token, action, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	var sess *Session
	err = runInTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)
		if action == auth.ActionVerifyEmail {
			if err := users.SetEmailVerified(ctx, userID); err != nil {
				return err
			}
		}
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		sess, err = s.issueSession(ctx, tx, user)
		return err
	})
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrUserNotFound
	}
	return sess, err
}

func (s *UserService) UpdatePassword(ctx context.Context, userID, password string) (*models.User, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.repomanager.Users(handle(s.db)).SetPassword(ctx, userID, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, userID)
}

func (s *UserService) issueSession(ctx context.Context, tx dbx.DBTX, user *models.User) (*Session, error) {
	access, err := auth.GenerateToken(auth.Identity{
		UserID:        user.ID,
		Email:         user.Email,
		Name:          user.Name,
		EmailVerified: user.EmailVerified,
	}, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := shared.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.accessTokenValidityDuration,
		User:         user,
	}, nil
}

// sendActionMail is best effort; a failed send is logged and the request
// still succeeds.
func (s *UserService) sendActionMail(ctx context.Context, user *models.User, action string) {
	token, err := auth.GenerateActionToken(user.ID, action, s.jwtSecret, actionTokenTTL)
	if err != nil {
		s.logger.Error(ctx, "action token", "error", err)
		return
	}

	subject := "Confirm your email"
	if action == auth.ActionRecovery {
		subject = "Reset your password"
	}
	link := fmt.Sprintf("/auth/v1/verify?type=%s&token=%s", action, token)

	if err := s.mailer.Send(ctx, user.Email, subject, link); err != nil {
		s.logger.Warn(ctx, "mail not sent", "user_id", user.ID, "error", err)
	}
}
