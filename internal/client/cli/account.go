package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/whatthenote/internal/client/pages"
	"github.com/dmitrijs2005/whatthenote/internal/common"
)

// Test seams for interactive input.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirmFn     = Confirm
)

func (a *App) Register(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	user, err := a.session.Register(ctx, name, email, string(password), string(confirm))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account created for %s. You can now log in.\n", user.Email)
	return nil
}

func (a *App) Login(ctx context.Context, args []string) error {
	var (
		email string
		err   error
	)
	if len(args) > 0 {
		email = args[0]
	} else if email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, email, string(password)); err != nil {
		return err
	}
	_, user := a.session.State()
	fmt.Fprintf(a.out, "Logged in as %s.\n", user.Name)
	return a.openDashboard(ctx)
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	err := a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return err
}

// WhoAmI prints the signed-in user, falling back to the profile stored at
// the last sign-in when the session has not been confirmed by the server.
func (a *App) WhoAmI(ctx context.Context, _ []string) error {
	_, user := a.session.State()
	if user.IsZero() {
		cached, ok, err := a.session.CachedUser(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errNotLoggedIn
		}
		user = cached
		fmt.Fprintln(a.out, "(offline)")
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	if !user.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "Member since %s\n", user.CreatedAt.Format(dateLayout))
	}
	return nil
}

// Profile updates the name and email. Empty answers keep the current value.
func (a *App) Profile(ctx context.Context, _ []string) error {
	_, current := a.session.State()
	name, err := getSimpleText(a.reader, fmt.Sprintf("Name [%s]", current.Name), a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, fmt.Sprintf("Email [%s]", current.Email), a.out)
	if err != nil {
		return err
	}
	user, err := a.session.UpdateProfile(ctx, name, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *App) DeleteAccount(ctx context.Context, _ []string) error {
	if err := pages.DeleteAccount(ctx, a.session, a.confirm); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}

func (a *App) Features(context.Context, []string) error {
	a.showFeatures()
	return nil
}

func (a *App) showFeatures() {
	renderFeatures(a.out, a.home.Features())
	if err := a.home.FeaturesErr(); err != nil {
		fmt.Fprintf(a.out, "(showing built-in features: %s)\n", userMessage(err))
	}
}
