package directory

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mwantia/tagsync/cmd/tagsync/cli"
	"github.com/mwantia/tagsync/internal/app"
	"github.com/mwantia/tagsync/internal/config"
	"github.com/mwantia/tagsync/internal/engine"
	"github.com/mwantia/tagsync/pkg/log"
)

func NewDirectoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Manage watched directories",
	}

	cmd.AddCommand(newAddCommand())
	cmd.AddCommand(newRemoveCommand())
	cmd.AddCommand(newListCommand())

	return cmd
}

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Watch a directory and pull its satellite databases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				dir, pull, err := e.AddDirectory(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Watching %s\n", dir.Path)
				fmt.Printf("Pulled %d/%d satellites: %d tags, %d files, %d associations\n",
					pull.DatabasesPulled, pull.DatabasesFound,
					pull.TagsImported, pull.FilesImported, pull.AssociationsImported)
				cli.PrintErrors(pull.Errors)
				return nil
			})
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>",
		Short: "Stop watching a directory (tag data is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				if err := e.RemoveDirectory(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Stopped watching %s\n", args[0])
				return nil
			})
		},
	}
}

func newListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List watched directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				dirs, err := e.ListDirectories(ctx, !all)
				if err != nil {
					return err
				}
				for _, d := range dirs {
					state := "active"
					if !d.IsActive {
						state = "inactive"
					}
					fmt.Printf("%s  [%s]  last sync %s\n", d.Path, state, d.LastSyncAt.Format("2006-01-02 15:04:05"))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include directories that are no longer watched")
	return cmd
}

func run(fn func(ctx context.Context, e *engine.Engine, logger log.LoggerService) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return app.Run(context.Background(), cfg, fn)
}
