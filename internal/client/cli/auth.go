package cli

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dmitrijs2005/gophtodo/internal/client/client"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) isLoggedIn() bool {
	return a.authService.LoggedIn()
}

// Register prompts for email, password and an optional display name and
// creates the account. It does not log in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	name, err := getSimpleText(a.reader, "Enter name (empty to use the email)", a.out)
	if err != nil {
		return err
	}

	if err := a.authService.Register(ctx, email, string(password), name); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success! You can login now.")
	return nil
}

// Login prompts for credentials and starts a session. Logging in as a
// different account than the cached one drops the local tasks first. A
// first sync runs right after.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	switched, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ModeOffline)
		}
		return err
	}

	if switched {
		if err := a.todos.Reset(ctx); err != nil {
			return err
		}
		log.Printf("Local tasks of the previous account were removed")
	}

	log.Printf("Login successful")
	a.setUserName(email)
	a.setMode(ModeOnline)
	return a.Sync(ctx)
}

// resume continues a stored session without asking for a password. An
// unreachable server leaves the app logged out with the cached tasks
// still browsable.
func (a *App) resume(ctx context.Context) {
	email, err := a.authService.Resume(ctx)
	switch {
	case err == nil:
		a.setUserName(email)
		a.setMode(ModeOnline)
		fmt.Fprintf(a.out, "Welcome back, %s\n", email)
		if err := a.Sync(ctx); err != nil {
			log.Println(err.Error())
		}
	case errors.Is(err, client.ErrLocalDataNotAvailable):
		fmt.Fprintln(a.out, "Type 'login' or 'register' to start")
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		log.Printf("Server unavailable, session not resumed. Type 'login' when online")
	default:
		log.Printf("Session expired, please login again: %v", err)
	}
}

// Logout ends the session. Cached tasks stay until another account logs in.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setUserName("")
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
