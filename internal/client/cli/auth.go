package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/jara/internal/client/services"
	"github.com/dmitrijs2005/jara/internal/client/session"
	"github.com/dmitrijs2005/jara/internal/common"
)

var errEmptyEmail = errors.New("email is required")

// readCredentials prompts for an email and a password. The caller wipes
// the returned password.
func (a *App) readCredentials() (string, []byte, error) {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	if email == "" {
		return "", nil, errEmptyEmail
	}

	password, err := GetPassword(a.reader, a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register creates a local account and signs in with it.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.auth.Register(ctx, email, password)
	if err != nil {
		return err
	}

	a.session.SignIn(ctx, res.User.Email, res.Token, res.User.ID)
	fmt.Fprintln(a.out, "Account created. Signed in as", res.User.Email)
	return nil
}

// Login verifies the credentials against the local account list.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.session.SignIn(ctx, res.User.Email, res.Token, res.User.ID)
	fmt.Fprintln(a.out, "Signed in as", res.User.Email)
	return nil
}

// RemoteLogin signs in against the collaborator API. The returned token is
// kept in the session and sent as the bearer token of later API calls.
func (a *App) RemoteLogin(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Login(ctx, services.NormalizeEmail(email), string(password))
	if err != nil {
		return err
	}

	userEmail := res.User.Email
	if userEmail == "" {
		userEmail = services.NormalizeEmail(email)
	}
	a.session.SignIn(ctx, userEmail, res.Token, res.User.ID)
	fmt.Fprintln(a.out, "Signed in remotely as", userEmail)
	return nil
}

// Logout revokes any playing URLs and clears the session.
func (a *App) Logout(ctx context.Context) error {
	_ = a.Stop(ctx)
	a.session.SignOut(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

// WhoAmI prints the session user and whether a local account backs it.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.session.Snapshot()
	if snap.State != session.StateAuthenticated || snap.User == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}

	fmt.Fprintln(a.out, "Email:", snap.User.Email)
	if snap.User.ID != "" {
		fmt.Fprintln(a.out, "ID:   ", snap.User.ID)
	}

	local, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if local != nil {
		fmt.Fprintln(a.out, "Account: local")
	} else {
		fmt.Fprintln(a.out, "Account: remote")
	}
	return nil
}
