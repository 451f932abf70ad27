package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rtype/internal/store"
	"github.com/roach88/rtype/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional - list sessions when empty
	Member   string // optional - filter to one member
	Failures bool   // only failed dispatches
}

// TraceEvent represents a single event in the trace timeline.
type TraceEvent struct {
	Seq          int64    `json:"seq"`
	ID           string   `json:"id"`
	Op           string   `json:"op"`
	ReceiverType string   `json:"receiver_type"`
	Member       string   `json:"member"`
	ArgTypes     []string `json:"arg_types"`
	Outcome      string   `json:"outcome"`
	ErrorCode    string   `json:"error_code,omitempty"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  string       `json:"session"`
	Timeline []TraceEvent `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Failures    int            `json:"failures"`
	ByOp        map[string]int `json:"by_op"`
	ErrorCodes  map[string]int `json:"error_codes,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Query recorded dispatch events",
		Long: `Query dispatch events recorded with "rtype test --db".

Without --session, lists every recorded session with its event count.
With --session, shows the session's events in seq order:
- Timeline: every load, put, send, index, set_index and call
- Stats: counts per operation and per error code

Examples:
  rtype trace --db ./trace.db
  rtype trace --db ./trace.db --session scenario-circle_dispatch
  rtype trace --db ./trace.db --session scenario-circle_dispatch --failures
  rtype trace --db ./trace.db --session scenario-circle_dispatch --member get --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to show (lists sessions when omitted)")
	cmd.Flags().StringVar(&opts.Member, "member", "", "filter to one member name")
	cmd.Flags().BoolVar(&opts.Failures, "failures", false, "show failed dispatches only")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	if err := requireFile(opts.Database); err != nil {
		return err
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.Session == "" {
		return listSessions(ctx, st, opts, cmd)
	}

	var records []store.Record
	if opts.Failures {
		records, err = st.ReadFailures(ctx, opts.Session)
	} else {
		records, err = st.ReadEvents(ctx, opts.Session)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	if len(records) == 0 {
		if opts.Format == "json" {
			return outputTraceJSON(cmd, TraceResult{
				Session:  opts.Session,
				Timeline: []TraceEvent{},
				Stats:    TraceStats{ByOp: map[string]int{}},
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "No events found for session: %s\n", opts.Session)
		return nil
	}

	timeline := buildTimeline(records, opts.Member)
	result := TraceResult{
		Session:  opts.Session,
		Timeline: timeline,
		Stats:    buildStats(timeline),
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

// buildTimeline converts stored records to timeline events, keeping only
// memberFilter when it is set.
func buildTimeline(records []store.Record, memberFilter string) []TraceEvent {
	timeline := make([]TraceEvent, 0, len(records))
	for _, rec := range records {
		if memberFilter != "" && rec.Member != memberFilter {
			continue
		}
		timeline = append(timeline, TraceEvent{
			Seq:          rec.Seq,
			ID:           rec.ID,
			Op:           string(rec.Op),
			ReceiverType: rec.ReceiverType,
			Member:       rec.Member,
			ArgTypes:     rec.ArgTypes,
			Outcome:      rec.Outcome,
			ErrorCode:    rec.ErrorCode,
		})
	}
	return timeline
}

func buildStats(timeline []TraceEvent) TraceStats {
	stats := TraceStats{
		TotalEvents: len(timeline),
		ByOp:        map[string]int{},
	}
	for _, e := range timeline {
		stats.ByOp[e.Op]++
		if e.Outcome == trace.OutcomeError {
			stats.Failures++
			if stats.ErrorCodes == nil {
				stats.ErrorCodes = map[string]int{}
			}
			stats.ErrorCodes[e.ErrorCode]++
		}
	}
	return stats
}

func listSessions(ctx context.Context, st *store.Store, opts *TraceOptions, cmd *cobra.Command) error {
	sessions, err := st.ReadSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read sessions", err)
	}

	if opts.Format == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(CLIResponse{Status: "ok", Data: sessions})
	}

	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		label := ""
		if s.Label != "" {
			label = " (" + s.Label + ")"
		}
		fmt.Fprintf(w, "%s%s: %d events\n", s.ID, label, s.Events)
	}
	return nil
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	response := CLIResponse{
		Status:  "ok",
		Data:    result,
		Session: result.Session,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Trace for Session: %s\n", result.Session)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	} else {
		for _, event := range result.Timeline {
			formatTimelineEvent(w, event, verbose)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	fmt.Fprintf(w, "  Failures:     %d\n", result.Stats.Failures)
	for _, op := range sortedCounts(result.Stats.ByOp) {
		fmt.Fprintf(w, "  %-12s  %d\n", op+":", result.Stats.ByOp[op])
	}
	return nil
}

// formatTimelineEvent formats a single timeline event for text output.
func formatTimelineEvent(w io.Writer, event TraceEvent, verbose bool) {
	fmt.Fprintf(w, "  [%d] %s %s.%s(%s) %s",
		event.Seq, strings.ToUpper(event.Op), event.ReceiverType, event.Member,
		strings.Join(event.ArgTypes, ", "), event.Outcome)
	if event.ErrorCode != "" {
		fmt.Fprintf(w, " %s", event.ErrorCode)
	}
	fmt.Fprintln(w)
	if verbose {
		fmt.Fprintf(w, "       ID: %s\n", truncateID(event.ID))
	}
}

func sortedCounts(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
