package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"modmatch/internal/batch"
	"modmatch/internal/catalog"
	"modmatch/internal/config"
	"modmatch/internal/matcher"
	"modmatch/internal/signals"
)

type matchFlags struct {
	mode    string
	objType string
	strict  bool
}

func (f *matchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", "auto", "Signal budget: quick, full, or auto (quick then full)")
	cmd.Flags().StringVar(&f.objType, "type", "", "Object type hint (e.g. character, weapon)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Only consider entries of the hinted type")
}

func (f *matchFlags) options() ([]batch.Option, error) {
	var opts []batch.Option
	switch mode := strings.ToLower(strings.TrimSpace(f.mode)); mode {
	case "", "auto":
	case string(signals.ModeQuick), string(signals.ModeFull):
		opts = append(opts, batch.WithMode(signals.Mode(mode)))
	default:
		return nil, fmt.Errorf("invalid --mode %q (expected quick, full, or auto)", f.mode)
	}
	if strings.TrimSpace(f.objType) != "" {
		opts = append(opts, batch.WithTypeHint(matcher.TypeHint{Type: f.objType, Strict: f.strict}))
	} else if f.strict {
		return nil, fmt.Errorf("--strict requires --type")
	}
	return opts, nil
}

// runSession bundles what a matching command needs. close releases the
// re-rank cache.
type runSession struct {
	cfg    *config.Config
	holder *catalog.Holder
	runner *batch.Runner
	closer io.Closer
}

func (s *runSession) close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

func (c *commandContext) newSession(flags *matchFlags) (*runSession, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts, err := flags.options()
	if err != nil {
		return nil, err
	}
	holder, err := c.loadCatalog()
	if err != nil {
		return nil, err
	}
	m, closer, err := c.newMatcher()
	if err != nil {
		return nil, err
	}
	opts = append(opts, batch.WithLogger(c.loggerValue()))
	return &runSession{
		cfg:    cfg,
		holder: holder,
		runner: batch.New(cfg, holder, m, opts...),
		closer: closer,
	}, nil
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var flags matchFlags
	var output outputFlags
	var explain bool

	cmd := &cobra.Command{
		Use:   "match <folder>",
		Short: "Match one mod folder against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.newSession(&flags)
			if err != nil {
				return err
			}
			defer session.close()

			fr := session.runner.MatchFolder(cmd.Context(), args[0])
			view := newMatchView(fr, explain)
			if done, err := output.structured(cmd, view); done {
				return err
			}
			if fr.Error != "" {
				return fmt.Errorf("match %s: %s", args[0], fr.Error)
			}
			printMatch(cmd.OutOrStdout(), view, explain)
			return nil
		},
	}
	flags.register(cmd)
	output.register(cmd)
	cmd.Flags().BoolVar(&explain, "explain", false, "Show reasons, stage trace and collected signals")
	return cmd
}

func printMatch(out io.Writer, view matchView, explain bool) {
	fmt.Fprintln(out, view.Label)
	fmt.Fprintf(out, "Confidence: %s\n", view.Confidence)
	fmt.Fprintf(out, "Decided by: %s (%s mode", view.Stage, view.Mode)
	if view.Fallback {
		fmt.Fprint(out, ", after quick pass")
	}
	fmt.Fprintln(out, ")")
	if view.Detail != "" {
		fmt.Fprintf(out, "Detail: %s\n", view.Detail)
	}
	if len(view.Candidates) > 0 {
		writeRows(out, []string{"#", "Name", "Type", "Score", "Confidence"}, candidateRows(view),
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft})
	}
	if !explain {
		return
	}
	for _, c := range view.Candidates {
		if len(c.Reasons) == 0 {
			continue
		}
		fmt.Fprintf(out, "Reasons for %s:\n", c.Name)
		for _, r := range c.Reasons {
			marker := " "
			if r.Primary {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s %s\n", marker, r.Detail)
		}
	}
	if len(view.Trace) > 0 {
		fmt.Fprintln(out, "Stage trace:")
		for _, tr := range view.Trace {
			leader := tr.Leader
			if leader == "" {
				leader = "-"
			}
			fmt.Fprintf(out, "  %-15s %-18s touched=%d leader=%s score=%.2f threshold=%.2f\n",
				tr.Stage, tr.Outcome, tr.Touched, leader, tr.Score, tr.Threshold)
		}
	}
	if view.Signals != nil {
		s := view.Signals
		fmt.Fprintf(out, "Signals: %d name, %d deep, %d ini tokens, %d hashes; %d INI files (%d bytes, %d skipped)\n",
			len(s.NameTokens), len(s.DeepTokens), len(s.IniTokens), len(s.Hashes),
			s.Counters.FilesScanned, s.Counters.BytesScanned, s.Counters.IniSkipped)
	}
}
