package db

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

func NewDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Reconcile the central database with satellite databases",
	}

	cmd.AddCommand(newPullCommand())
	cmd.AddCommand(newPushCommand())
	cmd.AddCommand(newCleanupCommand())
	cmd.AddCommand(newMergeCommand())
	cmd.AddCommand(newVerifyCommand())

	return cmd
}

func newPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <path>",
		Short: "Import a directory's satellite databases into the central database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				res, err := e.PullFromFolder(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Pulled %d/%d satellites: %d tags, %d files, %d associations\n",
					res.DatabasesPulled, res.DatabasesFound,
					res.TagsImported, res.FilesImported, res.AssociationsImported)
				cli.PrintErrors(res.Errors)
				return nil
			})
		},
	}
}

func newPushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push <path>",
		Short: "Export central records for a directory into its satellite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				res, err := e.PushToFolder(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Pushed %d tags, %d files, %d associations\n",
					res.TagsExported, res.FilesExported, res.AssociationsExported)
				if res.TagsPruned > 0 || res.FilesPruned > 0 {
					fmt.Printf("Pruned %d tags, %d files\n", res.TagsPruned, res.FilesPruned)
				}
				cli.PrintErrors(res.Errors)
				return nil
			})
		},
	}
}

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <path>",
		Short: "Pull everything, delete all satellites, push one clean satellite back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				res, err := e.CleanupFolder(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Deleted %d satellite directories\n", res.DirectoriesDeleted)
				fmt.Printf("Pulled %d tags, %d files, %d associations\n",
					res.Pull.TagsImported, res.Pull.FilesImported, res.Pull.AssociationsImported)
				fmt.Printf("Pushed %d tags, %d files, %d associations\n",
					res.Push.TagsExported, res.Push.FilesExported, res.Push.AssociationsExported)
				cli.PrintErrors(append(append(append([]string{}, res.Pull.Errors...), res.Push.Errors...), res.Errors...))
				return nil
			})
		},
	}
}

func newMergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge",
		Short: "Merge numbered duplicate satellites for every watched directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				res, err := e.MergeAllDuplicateDatabases(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("%d directories had duplicates; %d/%d duplicate databases deleted\n",
					res.DirectoriesWithDuplicates, res.DuplicateDatabasesDeleted, res.DuplicateDatabasesFound)
				fmt.Printf("Merged %d tags, %d files, %d associations\n",
					res.TagsMerged, res.FilesMerged, res.AssociationsMerged)
				cli.PrintErrors(res.Errors)
				return nil
			})
		},
	}
}

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Remove central records whose backing files no longer exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				res, err := e.VerifyAndCleanupTaggedFiles(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Checked %d records: %d existing, %d missing\n",
					res.TotalChecked, res.Existing, res.Missing)
				if len(res.AffectedTags) > 0 {
					fmt.Printf("Affected tags: %v\n", res.AffectedTags)
				}
				cli.PrintErrors(res.Errors)
				return nil
			})
		},
	}
}

func run(fn func(ctx context.Context, e *engine.Engine, logger log.LoggerService) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return app.Run(context.Background(), cfg, fn)
}
