package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/service"
)

// NewSeedCommand creates the seed command, which loads ingredients and tags
// from a YAML or JSON file.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load ingredients and tags into the catalog",
		Long: `Load ingredients and tags from a YAML (or JSON) document.

The document has "ingredients" and "tags" lists; a bare list is read as
ingredients. Existing ingredients are kept and tags are updated by slug, so
seeding twice is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, opts, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `seed file ("-" for stdin)`)
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *RootOptions, file string) error {
	var r io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open seed file: %w", err)
		}
		defer f.Close()
		r = f
	}

	seed, err := service.LoadSeed(r)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd, opts)
	if err != nil {
		return err
	}
	defer e.Close()

	result, err := service.ApplySeed(cmd.Context(), service.NewCatalogService(e.db.DB), seed)
	if err != nil {
		return err
	}

	e.log.WithFields(logrus.Fields{
		"ingredients_created": result.IngredientsCreated,
		"tags_created":        result.TagsCreated,
		"tags_updated":        result.TagsUpdated,
	}).Info("seed applied")
	fmt.Fprintf(cmd.OutOrStdout(), "ingredients created: %d, tags created: %d, tags updated: %d\n",
		result.IngredientsCreated, result.TagsCreated, result.TagsUpdated)
	return nil
}
