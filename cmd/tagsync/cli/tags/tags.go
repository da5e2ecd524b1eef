package tags

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwantia/tagsync/internal/app"
	"github.com/mwantia/tagsync/internal/config"
	"github.com/mwantia/tagsync/internal/engine"
	"github.com/mwantia/tagsync/pkg/log"
)

func NewTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags and tagged files",
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newAddCommand())
	cmd.AddCommand(newRemoveCommand())
	cmd.AddCommand(newShowCommand())
	cmd.AddCommand(newCreateCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newRenameCommand())
	cmd.AddCommand(newFilesCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags in use across watched directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				infos, err := e.GetAllAvailableTags(ctx)
				if err != nil {
					return err
				}
				for _, info := range infos {
					line := fmt.Sprintf("%s (%d)", info.Name, info.TotalUsageCount)
					if info.Description != "" {
						line += " - " + info.Description
					}
					fmt.Println(line)
				}
				return nil
			})
		},
	}
}

func newAddCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <path> <tag>",
		Short: "Attach a tag to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				tag, err := e.AddTagToFile(ctx, args[0], args[1], description)
				if err != nil {
					return err
				}
				fmt.Printf("Tagged %s with %q\n", args[0], tag.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "tag description")
	return cmd
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path> <tag>",
		Short: "Detach a tag from a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				if err := e.RemoveTagFromFile(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("Removed %q from %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Show the tags attached to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				tags, err := e.GetTagsForFile(ctx, args[0])
				if err != nil {
					return err
				}
				if len(tags) == 0 {
					fmt.Println("no tags")
					return nil
				}
				names := make([]string, 0, len(tags))
				for _, t := range tags {
					names = append(names, t.Name)
				}
				fmt.Println(strings.Join(names, ", "))
				return nil
			})
		},
	}
}

func newCreateCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <directory> <tag>",
		Short: "Create a standalone tag in a watched directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				tag, err := e.CreateTag(ctx, args[0], args[1], description)
				if err != nil {
					return err
				}
				fmt.Printf("Created tag %q in %s\n", tag.Name, args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "tag description")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <directory> <tag>",
		Short: "Delete a tag and all of its file associations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				if err := e.DeleteTag(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("Deleted tag %q from %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <directory> <old> <new>",
		Short: "Rename a tag, keeping its associations",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				if err := e.RenameTag(ctx, args[0], args[1], args[2]); err != nil {
					return err
				}
				fmt.Printf("Renamed %q to %q in %s\n", args[1], args[2], args[0])
				return nil
			})
		},
	}
}

func newFilesCommand() *cobra.Command {
	var untagged, all bool

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List files in watched directories with their tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, e *engine.Engine, _ log.LoggerService) error {
				var (
					files []engine.FileInfo
					err   error
				)
				switch {
				case all:
					files, err = e.GetAllFilesInWatchedDirectories(ctx)
				case untagged:
					files, err = e.GetUntaggedFiles(ctx)
				default:
					files, err = e.GetAllFilesWithTags(ctx)
				}
				if err != nil {
					return err
				}
				for _, f := range files {
					if f.IsTagged() {
						fmt.Printf("%s  [%s]\n", f.AbsolutePath, strings.Join(f.Tags, ", "))
					} else {
						fmt.Println(f.AbsolutePath)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&untagged, "untagged", false, "list files without tags instead")
	cmd.Flags().BoolVar(&all, "all", false, "list every file, tagged or not")
	return cmd
}

func run(fn func(ctx context.Context, e *engine.Engine, logger log.LoggerService) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return app.Run(context.Background(), cfg, fn)
}
