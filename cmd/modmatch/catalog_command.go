package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"modmatch/internal/catalog"
)

type entryView struct {
	ID         int      `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	ObjectType string   `json:"object_type,omitempty" yaml:"object_type,omitempty"`
	Aliases    []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Tags       []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Tokens     []string `json:"tokens" yaml:"tokens"`
	Hashes     int      `json:"hashes" yaml:"hashes"`
}

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the entity catalog",
	}
	cmd.AddCommand(newCatalogStatsCommand(ctx))
	cmd.AddCommand(newCatalogLookupCommand(ctx))
	return cmd
}

func newCatalogStatsCommand(ctx *commandContext) *cobra.Command {
	var output outputFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog index sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			holder, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			stats := holder.Current().Stats()
			if done, err := output.structured(cmd, stats); done {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Path", holder.Path()},
				{"Version", stats.Version},
				{"Entries", strconv.Itoa(stats.Entries)},
				{"Aliases", strconv.Itoa(stats.Aliases)},
				{"Tokens", strconv.Itoa(stats.Tokens)},
				{"Hashes", fmt.Sprintf("%d (%d unique)", stats.Hashes, stats.UniqueHashes)},
			}
			writeRows(out, []string{"Field", "Value"}, rows, nil)

			types := make([]string, 0, len(stats.ObjectTypes))
			for kind := range stats.ObjectTypes {
				types = append(types, kind)
			}
			sort.Strings(types)
			typeRows := make([][]string, 0, len(types))
			for _, kind := range types {
				typeRows = append(typeRows, []string{kind, strconv.Itoa(stats.ObjectTypes[kind])})
			}
			if len(typeRows) > 0 {
				fmt.Fprintln(out)
				writeRows(out, []string{"Object type", "Entries"}, typeRows,
					[]columnAlignment{alignLeft, alignRight})
			}
			return nil
		},
	}
	output.register(cmd)
	return cmd
}

func newCatalogLookupCommand(ctx *commandContext) *cobra.Command {
	var output outputFlags
	cmd := &cobra.Command{
		Use:   "lookup <name>",
		Short: "Show how one catalog entry is indexed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			holder, err := ctx.loadCatalog()
			if err != nil {
				return err
			}
			cat := holder.Current()
			name := strings.Join(args, " ")
			id, ok := cat.Lookup(name)
			if !ok {
				return fmt.Errorf("no catalog entry named %q", name)
			}
			view := newEntryView(cat, id)
			if done, err := output.structured(cmd, view); done {
				return err
			}

			rows := [][]string{
				{"ID", strconv.Itoa(view.ID)},
				{"Name", view.Name},
				{"Type", view.ObjectType},
				{"Aliases", strings.Join(view.Aliases, ", ")},
				{"Tags", strings.Join(view.Tags, ", ")},
				{"Tokens", strings.Join(view.Tokens, " ")},
				{"Hashes", strconv.Itoa(view.Hashes)},
			}
			writeRows(cmd.OutOrStdout(), []string{"Field", "Value"}, rows, nil)
			return nil
		},
	}
	output.register(cmd)
	return cmd
}

func newEntryView(cat *catalog.Catalog, id catalog.EntryID) entryView {
	entry := cat.Entry(id)
	view := entryView{
		ID:         int(id),
		Name:       entry.Name,
		ObjectType: cat.ObjectType(id),
		Tags:       entry.Tags,
		Tokens:     cat.EntryTokens(id),
		Hashes:     len(cat.Hashes(id)),
	}
	for _, alias := range cat.Aliases(id) {
		view.Aliases = append(view.Aliases, alias.Text)
	}
	return view
}
