package cli

import (
	"context"

	"github.com/dmitrijs2005/mediavault/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Register creates an account and signs in with it.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Register(ctx, userName, password)
	if err != nil {
		return err
	}
	a.setUser(u)
	a.setMode(ModeOnline)
	printlnFn("Registered and logged in as", u.Username)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.authService.Login(ctx, userName, password)
	if err != nil {
		return err
	}
	a.setUser(u)
	a.setMode(ModeOnline)
	printlnFn("Logged in as", u.Username)
	return nil
}

// Logout forgets the session and the cached listing.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setUser(nil)
	printlnFn("Logged out")
	return nil
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.authService.Me(ctx)
	if err != nil {
		return err
	}
	printlnFn("id:      ", u.ID)
	printlnFn("username:", u.Username)
	return nil
}
