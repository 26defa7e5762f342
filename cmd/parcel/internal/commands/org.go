package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/parcelreg/parcel/internal/registry"
)

// OrgCmd manages organizations owned by the caller.
type OrgCmd struct {
	Create  OrgCreateCmd  `cmd:"" help:"Create a new organization"`
	List    OrgListCmd    `cmd:"" help:"List organizations you own"`
	Add     OrgAddCmd     `cmd:"" help:"Add an owner to an organization"`
	Remove  OrgRemoveCmd  `cmd:"" help:"Remove an owner from an organization"`
	Update  OrgUpdateCmd  `cmd:"" help:"Rename an organization or change its details"`
	Destroy OrgDestroyCmd `cmd:"" help:"Destroy an organization"`
}

// OrgCreateCmd creates an organization with the caller as sole owner.
type OrgCreateCmd struct {
	Orgname     string `arg:"" help:"Organization name"`
	Email       string `help:"Organization contact email" required:""`
	Displayname string `help:"Display name"`
}

func (c *OrgCreateCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	_, err = app.Orgs.Create(ctx, registry.OrgSpec{
		Orgname:     c.Orgname,
		Email:       c.Email,
		Displayname: c.Displayname,
	})
	if err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s organization has been successfully created.", c.Orgname))
}

// OrgListCmd lists organizations the caller owns, oldest first.
type OrgListCmd struct{}

func (c *OrgListCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	orgs, err := app.Orgs.List(ctx)
	if err != nil {
		return err
	}

	if globals.JSONOutput {
		return globals.printJSON(orgs)
	}

	if len(orgs) == 0 {
		fmt.Fprintln(globals.out(), "No organizations found.")
		return nil
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORGNAME\tDISPLAYNAME\tEMAIL\tOWNERS")
	for _, o := range orgs {
		owners := make([]string, 0, len(o.Owners))
		for _, owner := range o.Owners {
			owners = append(owners, owner.Username)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Orgname, o.Displayname, o.Email, strings.Join(owners, ", "))
	}
	return w.Flush()
}

// OrgAddCmd appends an owner. Adding an existing owner is a no-op.
type OrgAddCmd struct {
	Orgname  string `arg:"" help:"Organization name"`
	Username string `arg:"" help:"Account to add as owner"`
}

func (c *OrgAddCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	if err := app.Orgs.AddOwner(ctx, c.Orgname, c.Username); err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s owner has been successfully added to the %s organization.", c.Username, c.Orgname))
}

// OrgRemoveCmd removes an owner. The last owner can never be removed.
type OrgRemoveCmd struct {
	Orgname  string `arg:"" help:"Organization name"`
	Username string `arg:"" help:"Owner to remove"`
}

func (c *OrgRemoveCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	if err := app.Orgs.RemoveOwner(ctx, c.Orgname, c.Username); err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s owner has been successfully removed from the %s organization.", c.Username, c.Orgname))
}

// OrgUpdateCmd renames an organization or changes its display fields.
type OrgUpdateCmd struct {
	Orgname     string `arg:"" help:"Organization name"`
	NewOrgname  string `help:"New organization name"`
	Displayname string `help:"New display name"`
	Email       string `help:"New contact email"`
}

func (c *OrgUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	_, err = app.Orgs.Update(ctx, c.Orgname, registry.OrgUpdate{
		Orgname:     c.NewOrgname,
		Displayname: c.Displayname,
		Email:       c.Email,
	})
	if err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s organization has been successfully updated.", c.Orgname))
}

// OrgDestroyCmd destroys an organization after a confirmation prompt. The
// destroy is refused while org-scoped linked resources remain.
type OrgDestroyCmd struct {
	Orgname string `arg:"" help:"Organization name"`
	Force   bool   `help:"Skip confirmation" default:"false"`
}

func (c *OrgDestroyCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	if !c.Force {
		ok, err := globals.confirm(fmt.Sprintf("Are you sure you want to destroy the %s organization?", c.Orgname))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(globals.out(), "Aborted.")
			return nil
		}
	}

	if err := app.Orgs.Destroy(ctx, c.Orgname); err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("Organization %s has been destroyed.", c.Orgname))
}
