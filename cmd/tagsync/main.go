package main

import (
	"fmt"
	"os"

	"github.com/mwantia/tagsync/cmd/tagsync/cli"
	"github.com/mwantia/tagsync/cmd/tagsync/cli/db"
	"github.com/mwantia/tagsync/cmd/tagsync/cli/directory"
	"github.com/mwantia/tagsync/cmd/tagsync/cli/tags"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(cli.NewVersionCommand())
	root.AddCommand(cli.NewTagCommand())
	root.AddCommand(cli.NewConfigCommand())

	root.AddCommand(directory.NewDirectoryCommand())
	root.AddCommand(db.NewDBCommand())
	root.AddCommand(tags.NewTagsCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
