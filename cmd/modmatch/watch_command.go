package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"modmatch/internal/catalog"
	"modmatch/internal/logging"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags matchFlags

	cmd := &cobra.Command{
		Use:   "watch <folder>...",
		Short: "Re-match folders whenever the catalog file changes",
		Long: `Match the given folders once, then keep watching the catalog file.
Each time it is saved the catalog is rebuilt and the folders are matched again.
Stop with Ctrl+C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folders, err := absFolders(args)
			if err != nil {
				return err
			}
			session, err := ctx.newSession(&flags)
			if err != nil {
				return err
			}
			defer session.close()

			out := cmd.OutOrStdout()
			rematch := func(runCtx context.Context, cat *catalog.Catalog) {
				fmt.Fprintf(out, "Catalog %s (%d entries)\n", shortVersion(cat.Version()), cat.Len())
				for _, folder := range folders {
					if runCtx.Err() != nil {
						return
					}
					fr := session.runner.MatchFolder(runCtx, folder)
					label := fr.Summary.Label
					if fr.Error != "" {
						label = "Error: " + fr.Error
					}
					fmt.Fprintf(out, "  %s: %s\n", folderLabel(folder), label)
				}
			}

			rematch(cmd.Context(), session.holder.Current())
			logger := ctx.loggerValue()
			err = session.holder.Watch(cmd.Context(), catalog.DefaultWatchDebounce, func(cat *catalog.Catalog) {
				logger.Info("catalog reloaded; re-matching folders",
					logging.String("catalog_version", cat.Version()),
					logging.Int("folders", len(folders)),
				)
				rematch(cmd.Context(), cat)
			})
			return err
		},
	}
	flags.register(cmd)
	return cmd
}

func shortVersion(version string) string {
	if len(version) > 12 {
		return version[:12]
	}
	return version
}

// absFolders resolves command-line folders so watch output stays stable when
// the working directory changes.
func absFolders(folders []string) ([]string, error) {
	out := make([]string, 0, len(folders))
	for _, folder := range folders {
		abs, err := filepath.Abs(folder)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", folder, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
