package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/parcelreg/parcel/internal/registry"
)

// AccountCmd manages the registry account and its sessions.
type AccountCmd struct {
	Register AccountRegisterCmd `cmd:"" help:"Create a new registry account"`
	Verify   AccountVerifyCmd   `cmd:"" help:"Submit an emailed verification token"`
	Login    AccountLoginCmd    `cmd:"" help:"Log in to the registry"`
	Logout   AccountLogoutCmd   `cmd:"" help:"Log out of the registry"`
	Show     AccountShowCmd     `cmd:"" help:"Show account information"`
	Token    AccountTokenCmd    `cmd:"" help:"Issue a personal authentication token"`
	Password AccountPasswordCmd `cmd:"" help:"Change the account password"`
	Update   AccountUpdateCmd   `cmd:"" help:"Update profile fields"`
	Destroy  AccountDestroyCmd  `cmd:"" help:"Destroy the account"`
}

// AccountRegisterCmd creates a new, unverified account.
type AccountRegisterCmd struct {
	Username  string `short:"u" help:"Username" required:""`
	Email     string `short:"e" help:"Email address" required:""`
	Password  string `short:"p" help:"Password" required:""`
	Firstname string `help:"First name" required:""`
	Lastname  string `help:"Last name" required:""`
}

func (c *AccountRegisterCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	_, err = app.Accounts.Register(ctx, registry.Registration{
		Username:  c.Username,
		Email:     c.Email,
		Password:  c.Password,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
	})
	if err != nil {
		return err
	}

	return globals.success("An account has been successfully created. Please check your mail to activate your account.")
}

// AccountVerifyCmd completes the email confirmation round trip.
type AccountVerifyCmd struct {
	Token string `arg:"" help:"Verification token from the confirmation email"`
}

func (c *AccountVerifyCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	if _, err := app.Accounts.Verify(ctx, c.Token); err != nil {
		return err
	}

	return globals.success("Your account has been verified!")
}

// AccountLoginCmd logs in by username or email.
type AccountLoginCmd struct {
	Username string `short:"u" help:"Username or email" required:""`
	Password string `short:"p" help:"Password" required:""`
}

func (c *AccountLoginCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	if _, err := app.Accounts.Login(ctx, c.Username, c.Password); err != nil {
		return err
	}

	return globals.success("Successfully logged in!")
}

// AccountLogoutCmd clears the active session. A second logout is a no-op.
type AccountLogoutCmd struct{}

func (c *AccountLogoutCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	if err := app.Accounts.Logout(ctx); err != nil {
		return err
	}

	return globals.success("Successfully logged out!")
}

// AccountShowCmd prints the account summary. The offline variant uses only
// locally cached profile fields and never reaches the registry.
type AccountShowCmd struct {
	Offline bool `help:"Use cached profile data only"`
}

func (c *AccountShowCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	summary, err := app.Accounts.Show(ctx, c.Offline)
	if err != nil {
		return err
	}

	if globals.JSONOutput {
		return globals.printJSON(summary)
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Username:\t%s\n", summary.Profile.Username)
	fmt.Fprintf(w, "Email:\t%s\n", summary.Profile.Email)
	fmt.Fprintf(w, "Name:\t%s %s\n", summary.Profile.Firstname, summary.Profile.Lastname)
	if summary.UserID != "" {
		fmt.Fprintf(w, "User ID:\t%s\n", summary.UserID)
	}
	if summary.Packages != nil {
		fmt.Fprintf(w, "Packages:\t%d\n", len(summary.Packages))
		for _, pkg := range summary.Packages {
			fmt.Fprintf(w, "\t%s (%s)\n", pkg.Name, pkg.Path)
		}
	}
	if summary.Subscriptions != nil {
		fmt.Fprintf(w, "Subscriptions:\t%d\n", len(summary.Subscriptions))
		for _, sub := range summary.Subscriptions {
			fmt.Fprintf(w, "\t%s (%s)\n", sub.Plan, sub.Status)
		}
	}
	return w.Flush()
}

// AccountTokenCmd issues a personal token. The password is re-proved even
// when the caller already holds a valid credential.
type AccountTokenCmd struct {
	Password string `short:"p" help:"Account password" required:""`
}

func (c *AccountTokenCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	token, err := app.Accounts.Token(ctx, c.Password)
	if err != nil {
		return err
	}

	if globals.JSONOutput {
		return globals.printJSON(Result{Status: "success", Result: token})
	}
	_, err = fmt.Fprintf(globals.out(), "Personal Authentication Token: %s\n", token)
	return err
}

// AccountPasswordCmd changes the account password.
type AccountPasswordCmd struct {
	OldPassword string `help:"Current password" required:""`
	NewPassword string `help:"New password" required:""`
}

func (c *AccountPasswordCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	if err := app.Accounts.ChangePassword(ctx, c.OldPassword, c.NewPassword); err != nil {
		return err
	}

	return globals.success("Password successfully changed!")
}

// AccountUpdateCmd updates profile fields. Changing the email requires a
// fresh verification round trip and a re-login.
type AccountUpdateCmd struct {
	CurrentPassword string `help:"Current password" required:""`
	Username        string `help:"New username"`
	Email           string `help:"New email address"`
	Firstname       string `help:"New first name"`
	Lastname        string `help:"New last name"`
}

func (c *AccountUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	_, reverify, err := app.Accounts.Update(ctx, registry.ProfileUpdate{
		CurrentPassword: c.CurrentPassword,
		Username:        c.Username,
		Email:           c.Email,
		Firstname:       c.Firstname,
		Lastname:        c.Lastname,
	})
	if err != nil {
		return err
	}

	message := "Profile successfully updated!"
	if reverify {
		message += " Please check your mail to verify your new email address and re-login."
	}
	return globals.success(message)
}

// AccountDestroyCmd destroys the account after a confirmation prompt. The
// destroy is refused while linked resources remain in the registry.
type AccountDestroyCmd struct {
	Force bool `help:"Skip confirmation" default:"false"`
}

func (c *AccountDestroyCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	if !c.Force {
		ok, err := globals.confirm("Are you sure you want to destroy your account?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(globals.out(), "Aborted.")
			return nil
		}
	}

	if err := app.Accounts.Destroy(ctx); err != nil {
		return err
	}

	return globals.success("Account has been destroyed.")
}
