package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/parcelreg/parcel/internal/registry"
)

// TeamCmd manages teams within an organization. Teams are addressed as
// orgname:teamname on the command line; the composite form is parsed here
// and never travels further as a string.
type TeamCmd struct {
	Create  TeamCreateCmd  `cmd:"" help:"Create a new team in an organization"`
	List    TeamListCmd    `cmd:"" help:"List an organization's teams"`
	Add     TeamAddCmd     `cmd:"" help:"Add a member to a team"`
	Remove  TeamRemoveCmd  `cmd:"" help:"Remove a member from a team"`
	Update  TeamUpdateCmd  `cmd:"" help:"Rename a team or change its description"`
	Destroy TeamDestroyCmd `cmd:"" help:"Destroy a team"`
}

// TeamCreateCmd creates a team. Requires org-owner privilege.
type TeamCreateCmd struct {
	Team        string `arg:"" help:"Team as orgname:teamname"`
	Description string `help:"Team description"`
}

func (c *TeamCreateCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	ref, err := registry.ParseTeamRef(c.Team)
	if err != nil {
		return err
	}

	if _, err := app.Teams.Create(ctx, ref, c.Description); err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s team has been successfully created.", ref))
}

// TeamListCmd lists an organization's teams, oldest first.
type TeamListCmd struct {
	Orgname string `arg:"" help:"Organization name"`
}

func (c *TeamListCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	teams, err := app.Teams.List(ctx, c.Orgname)
	if err != nil {
		return err
	}

	if globals.JSONOutput {
		return globals.printJSON(teams)
	}

	if len(teams) == 0 {
		fmt.Fprintln(globals.out(), "No teams found.")
		return nil
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION\tMEMBERS")
	for _, t := range teams {
		members := make([]string, 0, len(t.Members))
		for _, m := range t.Members {
			members = append(members, m.Username)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.Description, strings.Join(members, ", "))
	}
	return w.Flush()
}

// TeamAddCmd adds a member. Adding an existing member is a no-op.
type TeamAddCmd struct {
	Team     string `arg:"" help:"Team as orgname:teamname"`
	Username string `arg:"" help:"Account to add"`
}

func (c *TeamAddCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	ref, err := registry.ParseTeamRef(c.Team)
	if err != nil {
		return err
	}

	if err := app.Teams.AddMember(ctx, ref, c.Username); err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s member has been successfully added to the %s team.", c.Username, ref))
}

// TeamRemoveCmd removes a member. Removing a non-member is a no-op.
type TeamRemoveCmd struct {
	Team     string `arg:"" help:"Team as orgname:teamname"`
	Username string `arg:"" help:"Member to remove"`
}

func (c *TeamRemoveCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	ref, err := registry.ParseTeamRef(c.Team)
	if err != nil {
		return err
	}

	if err := app.Teams.RemoveMember(ctx, ref, c.Username); err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s member has been successfully removed from the %s team.", c.Username, ref))
}

// TeamUpdateCmd renames a team within its org or changes its description.
type TeamUpdateCmd struct {
	Team        string `arg:"" help:"Team as orgname:teamname"`
	Name        string `help:"New team name"`
	Description string `help:"New description"`
}

func (c *TeamUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	ref, err := registry.ParseTeamRef(c.Team)
	if err != nil {
		return err
	}

	if _, err := app.Teams.Update(ctx, ref, registry.TeamUpdate{
		Name:        c.Name,
		Description: c.Description,
	}); err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s team has been successfully updated.", ref))
}

// TeamDestroyCmd destroys a team after a confirmation prompt.
type TeamDestroyCmd struct {
	Team  string `arg:"" help:"Team as orgname:teamname"`
	Force bool   `help:"Skip confirmation" default:"false"`
}

func (c *TeamDestroyCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	ref, err := registry.ParseTeamRef(c.Team)
	if err != nil {
		return err
	}

	if !c.Force {
		ok, err := globals.confirm(fmt.Sprintf("Are you sure you want to destroy the %s team?", ref))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(globals.out(), "Aborted.")
			return nil
		}
	}

	if err := app.Teams.Destroy(ctx, ref); err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("Team %s has been destroyed.", ref))
}
