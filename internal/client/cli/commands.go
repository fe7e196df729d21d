package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/client/client"
	"github.com/dmitrijs2005/credkeeper/internal/common"
)

// getSimpleText and getPassword are indirections swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// describe turns client errors into short user-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	case errors.Is(err, client.ErrUnauthorized):
		return "not authorized, please log in again"
	case errors.Is(err, client.ErrEmailNotVerified):
		return "email is not verified yet, use 'verify <token>' or 'resend'"
	case errors.Is(err, client.ErrNotSignedIn):
		return "not signed in"
	case errors.Is(err, common.ErrAlreadyExists):
		return "already exists"
	default:
		return err.Error()
	}
}

func (a *App) promptEmail() (string, error) {
	return getSimpleText(a.reader, "Enter email", a.out)
}

func (a *App) Register(ctx context.Context) error {
	email, err := a.promptEmail()
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter name (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Register(ctx, email, name, password); err != nil {
		return err
	}

	a.email = common.NormalizeEmail(email)
	printlnFn("Registered. A verification token was sent to", a.email)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := a.promptEmail()
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}

	a.email = common.NormalizeEmail(email)
	printlnFn("Login successful")
	return nil
}

func (a *App) VerifyEmail(ctx context.Context, args []string) error {
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		t, err := getSimpleText(a.reader, "Enter verification token", a.out)
		if err != nil {
			return err
		}
		token = t
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.VerifyEmail(ctx, token); err != nil {
		return err
	}
	printlnFn("Email verified")
	return nil
}

func (a *App) ResendVerification(ctx context.Context) error {
	email := a.email
	if email == "" {
		e, err := a.promptEmail()
		if err != nil {
			return err
		}
		email = e
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.SendVerificationEmail(ctx, email); err != nil {
		return err
	}
	printlnFn("Verification token sent")
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := a.promptEmail()
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.ForgotPassword(ctx, email); err != nil {
		return err
	}
	printlnFn("Reset code sent, use 'reset' to choose a new password")
	return nil
}

// ResetPassword checks the code first so a typo is reported before the new
// password is typed.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := a.promptEmail()
	if err != nil {
		return err
	}
	code, err := getSimpleText(a.reader, "Enter reset code", a.out)
	if err != nil {
		return err
	}

	vctx, cancel := a.withTimeout(ctx)
	err = a.authService.VerifyCode(vctx, email, code)
	cancel()
	if err != nil {
		return err
	}

	password, err := getPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel = a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.ResetPassword(ctx, email, code, password); err != nil {
		return err
	}
	printlnFn("Password changed, please log in")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	p, err := a.authService.UserInfo(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "id:        %s\n", p.ID)
	fmt.Fprintf(&b, "email:     %s\n", p.Email)
	if p.Name != "" {
		fmt.Fprintf(&b, "name:      %s\n", p.Name)
	}
	fmt.Fprintf(&b, "verified:  %t\n", p.EmailVerified)
	if len(p.DeviceTokens) > 0 {
		fmt.Fprintf(&b, "devices:   %s\n", strings.Join(p.DeviceTokens, ", "))
	}
	fmt.Fprintf(&b, "access:    until %s\n", p.AccessExpires.Local().Format(time.RFC3339))
	if p.RefreshExpires != nil {
		fmt.Fprintf(&b, "refresh:   until %s", p.RefreshExpires.Local().Format(time.RFC3339))
	} else {
		b.WriteString("refresh:   none")
	}
	printlnFn(b.String())
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Refresh(ctx); err != nil {
		return err
	}
	printlnFn("Tokens refreshed")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	password, err := getPassword("Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.ChangePassword(ctx, password); err != nil {
		return err
	}
	printlnFn("Password changed")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.email = ""
	printlnFn("Logged out")
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	if err := a.authService.Ping(ctx); err != nil {
		return err
	}
	printlnFn("Server is online")
	return nil
}
