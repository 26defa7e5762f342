package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/parcelreg/parcel/internal/archive"
	"github.com/parcelreg/parcel/internal/registry"
)

// PackageCmd publishes and unpublishes registry packages. Published packages
// count as linked resources and block account and organization destruction.
type PackageCmd struct {
	Publish   PackagePublishCmd   `cmd:"" help:"Pack a directory and publish it"`
	Unpublish PackageUnpublishCmd `cmd:"" help:"Remove a published package"`
}

// PackagePublishCmd packs a source directory into a tarball and uploads it.
type PackagePublishCmd struct {
	Dir  string `arg:"" help:"Package source directory" type:"existingdir"`
	Name string `help:"Package name, defaults to the directory name"`
	Org  string `help:"Publish under an organization instead of the account"`
}

func (c *PackagePublishCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	sess, err := app.Store.Require()
	if err != nil {
		return err
	}

	name := c.Name
	if name == "" {
		name = filepath.Base(filepath.Clean(c.Dir))
	}
	if err := registry.ValidateName("package name", name); err != nil {
		return err
	}

	data, err := archive.Pack(c.Dir)
	if err != nil {
		return err
	}

	pkg, err := app.Authority.PublishPackage(ctx, sess.Credential(), registry.PackageUpload{
		Name:    name,
		Org:     c.Org,
		Archive: data,
	})
	if err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s package has been successfully published.", pkg.Name))
}

// PackageUnpublishCmd removes a published package, unblocking destroys that
// it was holding up.
type PackageUnpublishCmd struct {
	Name string `arg:"" help:"Package name"`
}

func (c *PackageUnpublishCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.App()
	if err != nil {
		return err
	}

	sess, err := app.Store.Require()
	if err != nil {
		return err
	}

	if err := app.Authority.UnpublishPackage(ctx, sess.Credential(), c.Name); err != nil {
		return err
	}

	return globals.success(fmt.Sprintf("The %s package has been removed from the registry.", c.Name))
}
