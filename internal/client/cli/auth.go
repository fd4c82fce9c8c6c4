package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/dreamteller/internal/client/services"
	"github.com/dmitrijs2005/dreamteller/internal/shared"
)

const resetPasswordPrompt = "Please enter your email address. We will send you a password reset link if it is in our user records."

// reportAuth prints the outcome carried by an auth snapshot and turns an error
// message back into an error for the caller.
func (a *App) reportAuth(st services.AuthState) error {
	if st.ErrorMessage != "" {
		a.println("Error:", st.ErrorMessage)
		return errors.New(st.ErrorMessage)
	}
	if st.InfoMessage != "" {
		a.println(st.InfoMessage)
	}
	return nil
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)
	repeat, err := GetPassword(a.reader, "Repeat password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(repeat)

	a.auth.SignUp(ctx, name, email, string(password), string(repeat))
	st := a.auth.Snapshot()
	if err := a.reportAuth(st); err != nil {
		return err
	}
	a.printf("Welcome, %s!\n", displayName(st))
	return a.Dreams(ctx)
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	a.auth.SignIn(ctx, email, string(password))
	st := a.auth.Snapshot()
	if err := a.reportAuth(st); err != nil {
		return err
	}
	a.printf("Welcome back, %s!\n", displayName(st))
	return a.Dreams(ctx)
}

func (a *App) ResetPassword(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, resetPasswordPrompt, a.out)
	if err != nil {
		return err
	}
	a.auth.SendPasswordReset(ctx, email)
	return a.reportAuth(a.auth.Snapshot())
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.SignOut(ctx)
	if err := a.reportAuth(a.auth.Snapshot()); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	st := a.auth.Snapshot()
	verified := "no"
	if st.EmailVerified {
		verified = "yes"
	}
	a.printf("Name:     %s\nEmail:    %s\nUser ID:  %s\nVerified: %s\n", displayName(st), st.Email, st.UserID, verified)
	return nil
}

// Token prints the current ID token, optionally forcing a refresh first.
func (a *App) Token(ctx context.Context, refresh bool) error {
	if refresh {
		a.auth.FetchIDToken(ctx, true)
	}
	st := a.auth.Snapshot()
	if err := a.reportAuth(st); err != nil {
		return err
	}
	if st.IDToken == "" {
		a.println("No token.")
		return nil
	}
	a.println(st.IDToken)
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	a.auth.SendEmailVerification(ctx)
	return a.reportAuth(a.auth.Snapshot())
}

func (a *App) Reload(ctx context.Context) error {
	a.auth.ReloadUser(ctx)
	if err := a.reportAuth(a.auth.Snapshot()); err != nil {
		return err
	}
	return a.WhoAmI(ctx)
}

func displayName(st services.AuthState) string {
	if st.DisplayName != "" {
		return st.DisplayName
	}
	return st.Email
}
