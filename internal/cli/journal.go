package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GlaceYT/E-Canteen/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	After int64
	Label string
	Limit int
}

// JournalResult is the JSON shape of the journal command.
type JournalResult struct {
	Entries []store.JournalEntry `json:"entries"`
	LastSeq int64                `json:"last_seq"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show committed writes",
		Long: `List the write journal: one entry per committed batch, with the label of
the operation that wrote it and the keys it touched.

Examples:
  canteen journal
  canteen journal --label checkout
  canteen journal --after 12 --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(e *env) error {
				return runJournal(opts, e)
			})
		},
	}

	cmd.Flags().Int64Var(&opts.After, "after", 0, "only entries after this sequence number")
	cmd.Flags().StringVar(&opts.Label, "label", "", "only entries with this label")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to show (0 = all)")

	return cmd
}

func runJournal(opts *JournalOptions, e *env) error {
	entries, err := e.app.Store.Journal(e.ctx, store.JournalQuery{
		AfterSeq: opts.After,
		Label:    opts.Label,
		Limit:    opts.Limit,
	})
	if err != nil {
		return e.out.Fail(err)
	}
	last, err := e.app.Store.LastSeq(e.ctx)
	if err != nil {
		return e.out.Fail(err)
	}

	result := JournalResult{Entries: entries, LastSeq: last}
	return e.out.Success(result, journalText(result))
}

func journalText(r JournalResult) string {
	if len(r.Entries) == 0 {
		return "No journal entries.\n"
	}
	var b strings.Builder
	for _, en := range r.Entries {
		fmt.Fprintf(&b, "[%d] %-16s %s\n", en.Seq, en.Label, strings.Join(en.Keys, ", "))
	}
	fmt.Fprintf(&b, "\n%d entries (last seq %d)\n", len(r.Entries), r.LastSeq)
	return b.String()
}
