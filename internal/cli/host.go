package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/evcraddock/staybook/internal/client"
	"github.com/evcraddock/staybook/internal/property"
	"github.com/evcraddock/staybook/internal/session"
)

// listingFlags are shared by host create and host edit.
type listingFlags struct {
	title       string
	description string
	location    string
	price       float64
	active      bool
	mainImage   string
	images      string
	mainFile    string
	files       []string
}

func (f *listingFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "listing title")
	fs.StringVar(&f.description, "description", "", "listing description")
	fs.StringVar(&f.location, "location", "", "where the stay is")
	fs.Float64Var(&f.price, "price", 0, "price per night")
	fs.BoolVar(&f.active, "active", true, "whether guests can find and book the listing")
	fs.StringVar(&f.mainImage, "main-image", "", "main image URL or storage path")
	fs.StringVar(&f.images, "images", "", "comma separated gallery image URLs or storage paths")
	fs.StringVar(&f.mainFile, "main-image-file", "", "local main image to upload")
	fs.StringSliceVar(&f.files, "image-file", nil, "local gallery image to upload (repeatable)")
}

// apply copies the flags the user set onto in.
func (f *listingFlags) apply(fs *pflag.FlagSet, in *property.Input) {
	if fs.Changed("title") {
		in.Title = f.title
	}
	if fs.Changed("description") {
		in.Description = &f.description
	}
	if fs.Changed("location") {
		in.Location = &f.location
	}
	if fs.Changed("price") {
		in.PricePerNight = f.price
	}
	if fs.Changed("active") {
		in.IsActive = f.active
	}
	if fs.Changed("main-image") {
		in.MainImageURL = &f.mainImage
	}
	if fs.Changed("images") {
		in.ImageURLs = property.SplitImageList(f.images)
	}
}

func newHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Manage listings you host",
		Long:  "Create and edit listings. Requires a host account.",
	}
	cmd.AddCommand(newHostCreateCmd(), newHostEditCmd())
	return cmd
}

func newHostCreateCmd() *cobra.Command {
	var f listingFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := property.Input{IsActive: true}
			f.apply(cmd.Flags(), &in)
			return runHostCreate(cmd.Context(), in, f.mainFile, f.files)
		},
	}

	f.register(cmd.Flags())

	return cmd
}

func runHostCreate(ctx context.Context, in property.Input, mainFile string, files []string) error {
	c := newAPIClient()
	if err := session.RequireHost(session.Load(ctx, c)); err != nil {
		return err
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	if err := uploadImages(ctx, c, &in, mainFile, files); err != nil {
		return err
	}

	p, err := c.CreateProperty(ctx, in)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(p)
	}
	fmt.Fprintf(stdout, "✓ Listing created: %s (%s)\n", p.Title, p.ID)
	return nil
}

func newHostEditCmd() *cobra.Command {
	var f listingFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a listing",
		Long:  "Edit a listing. Only the fields given as flags are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHostEdit(cmd.Context(), args[0], func(in *property.Input) {
				f.apply(cmd.Flags(), in)
			}, f.mainFile, f.files)
		},
	}

	f.register(cmd.Flags())

	return cmd
}

func runHostEdit(ctx context.Context, id string, edit func(*property.Input), mainFile string, files []string) error {
	c := newAPIClient()
	if err := session.RequireHost(session.Load(ctx, c)); err != nil {
		return err
	}

	current, err := c.GetProperty(ctx, id)
	if err != nil {
		return err
	}

	in := property.InputFrom(*current)
	edit(&in)
	in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	if err := uploadImages(ctx, c, &in, mainFile, files); err != nil {
		return err
	}

	p, err := c.UpdateProperty(ctx, id, in)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(p)
	}
	fmt.Fprintf(stdout, "✓ Listing updated: %s (%s)\n", p.Title, p.ID)
	return nil
}

// uploadImages uploads local files into the listing's folder and records
// the stored paths on in. Gallery uploads are appended to existing images.
func uploadImages(ctx context.Context, c *client.Client, in *property.Input, mainFile string, files []string) error {
	if mainFile == "" && len(files) == 0 {
		return nil
	}

	folder := "props/" + property.Slug(in.Title)
	if folder == "props/" {
		folder = "props/item"
	}

	if mainFile != "" {
		path, err := uploadFile(ctx, c, folder, mainFile)
		if err != nil {
			return err
		}
		in.MainImageURL = &path
	}
	for _, file := range files {
		path, err := uploadFile(ctx, c, folder, file)
		if err != nil {
			return err
		}
		in.ImageURLs = append(in.ImageURLs, path)
	}
	return nil
}

func uploadFile(ctx context.Context, c *client.Client, folder, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	name := property.UniqueName(filepath.Base(file), time.Now(), uuid.NewString()[:8])
	return c.UploadImage(ctx, folder, name, f)
}
