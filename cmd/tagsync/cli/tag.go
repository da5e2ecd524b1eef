package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwantia/tagsync/internal/app"
	"github.com/mwantia/tagsync/internal/config"
)

// NewTagCommand is the two-argument entry used by external launchers:
// `tagsync tag <path>` opens tag management for the original file behind the
// given path, which may be a temp copy produced by result staging. The temp
// resolution happens inside the engine, so callers can pass either form.
func NewTagCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tag <path>",
		Short: "Show and manage tags for the original file behind a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx := context.Background()
			a := app.New(cfg)
			if err := a.Open(ctx); err != nil {
				return err
			}
			defer a.Close(ctx)

			tags, err := a.Engine().GetTagsForFile(ctx, args[0])
			if err != nil {
				return err
			}

			if len(tags) == 0 {
				fmt.Printf("%s has no tags\n", args[0])
				return nil
			}
			fmt.Printf("Tags for %s:\n", args[0])
			for _, t := range tags {
				if t.Description != "" {
					fmt.Printf("  %s - %s\n", t.Name, t.Description)
				} else {
					fmt.Printf("  %s\n", t.Name)
				}
			}
			return nil
		},
	}
}
