package commands

import (
	"fmt"
	"runtime"

	"backup-editor/internal/app"

	"github.com/spf13/cobra"
)

func addVersion(topLevel *cobra.Command) {
	shortened := false
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the backup-editor version.",
		Example: `
backup-editor version
`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if shortened {
				fmt.Fprintln(cmd.OutOrStdout(), app.AppVersion)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup-editor %s (%s %s/%s)\n",
				app.AppVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")

	topLevel.AddCommand(cmd)
}
