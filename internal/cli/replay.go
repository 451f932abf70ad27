package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rtype/internal/harness"
	"github.com/roach88/rtype/internal/ir"
	"github.com/roach88/rtype/internal/store"
	"github.com/roach88/rtype/internal/trace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - defaults to the scenario's recorded session
}

// ReplayResult holds the replay comparison.
type ReplayResult struct {
	Scenario       string `json:"scenario"`
	Session        string `json:"session"`
	RecordedEvents int    `json:"recorded_events"`
	ReplayedEvents int    `json:"replayed_events"`
	RecordedDigest string `json:"recorded_digest"`
	ReplayedDigest string `json:"replayed_digest"`
	Deterministic  bool   `json:"deterministic"`
	// FirstDivergence is the 1-based position of the first differing
	// event, 0 when the traces match.
	FirstDivergence int `json:"first_divergence,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml>",
		Short: "Re-run a scenario and compare it with a recorded session",
		Long: `Re-run a scenario in a fresh runtime and compare its dispatch trace
against the session recorded by "rtype test --db".

Traces are compared by digest over the ordered event bodies, so session
ids do not affect the result.

Exit codes:
  0 - Replayed trace matches the recording
  1 - Traces differ
  2 - Command error (database not found, unknown session, etc.)

Examples:
  rtype replay --db ./trace.db testdata/scenarios/circle_dispatch.yaml
  rtype replay --db ./trace.db --session my-session scenario.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "recorded session to compare against")

	return cmd
}

func runReplay(opts *ReplayOptions, scenarioFile string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	session := opts.Session
	if session == "" {
		session = recordedSession(scenario)
	}

	if err := requireFile(opts.Database); err != nil {
		return err
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	recorded, err := st.ReadEvents(ctx, session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}
	if len(recorded) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no events recorded for session: %s", session))
	}

	var runOpts []harness.Option
	if logger := newLogger(opts.RootOptions, cmd.ErrOrStderr()); logger != nil {
		runOpts = append(runOpts, harness.WithLogger(logger))
	}
	replayed, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario execution failed", err)
	}

	recordedEvents := make([]trace.Event, len(recorded))
	for i, rec := range recorded {
		recordedEvents[i] = rec.Event
	}

	result := ReplayResult{
		Scenario:       scenario.Name,
		Session:        session,
		RecordedEvents: len(recordedEvents),
		ReplayedEvents: len(replayed.Trace),
	}
	if result.RecordedDigest, err = digest(recordedEvents); err != nil {
		return WrapExitError(ExitCommandError, "failed to digest recorded trace", err)
	}
	if result.ReplayedDigest, err = digest(replayed.Trace); err != nil {
		return WrapExitError(ExitCommandError, "failed to digest replayed trace", err)
	}
	result.Deterministic = result.RecordedDigest == result.ReplayedDigest
	if !result.Deterministic {
		result.FirstDivergence = firstDivergence(recordedEvents, replayed.Trace)
	}
	formatter.VerboseLog("replayed %s: %d events, digest %s", scenario.Name, result.ReplayedEvents, result.ReplayedDigest)

	if opts.Format == "json" {
		if err := outputReplayJSON(cmd, result); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result, recordedEvents, replayed.Trace)
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, "replayed trace differs from recording")
	}
	return nil
}

func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	return nil
}

func digest(events []trace.Event) (string, error) {
	bodies := make([]map[string]any, len(events))
	for i, e := range events {
		bodies[i] = e.Body()
	}
	return ir.TraceDigest(bodies)
}

// firstDivergence returns the 1-based index of the first event whose body
// differs, or the length of the shorter trace plus one.
func firstDivergence(a, b []trace.Event) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ca, errA := ir.MarshalCanonical(a[i].Body())
		cb, errB := ir.MarshalCanonical(b[i].Body())
		if errA != nil || errB != nil || string(ca) != string(cb) {
			return i + 1
		}
	}
	return n + 1
}

func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	status := "ok"
	if !result.Deterministic {
		status = "error"
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{Status: status, Data: result, Session: result.Session})
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult, recorded, replayed []trace.Event) {
	w := formatter.Writer
	fmt.Fprintf(w, "Replay of %s against session %s\n", result.Scenario, result.Session)
	fmt.Fprintf(w, "  Recorded: %d events  %s\n", result.RecordedEvents, truncateID(result.RecordedDigest))
	fmt.Fprintf(w, "  Replayed: %d events  %s\n", result.ReplayedEvents, truncateID(result.ReplayedDigest))

	if result.Deterministic {
		fmt.Fprintf(w, "%s Trace matches recording\n", formatter.Mark(true))
		return
	}
	fmt.Fprintf(w, "%s Trace differs at event %d\n", formatter.Mark(false), result.FirstDivergence)
	i := result.FirstDivergence - 1
	if i < len(recorded) {
		fmt.Fprintf(w, "  recorded: %s\n", recorded[i])
	} else {
		fmt.Fprintln(w, "  recorded: (end of trace)")
	}
	if i < len(replayed) {
		fmt.Fprintf(w, "  replayed: %s\n", replayed[i])
	} else {
		fmt.Fprintln(w, "  replayed: (end of trace)")
	}
}
