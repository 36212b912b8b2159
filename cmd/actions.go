// ABOUTME: Approve and cancel commands for the booking CLI
// ABOUTME: Runs admin actions on several bookings concurrently

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nandasurya23/resource-booking-cli/internal/workflow"
)

// maxConcurrentActions bounds in-flight admin requests per invocation
const maxConcurrentActions = 4

var approveCmd = &cobra.Command{
	Use:   "approve ID...",
	Short: "Approve pending bookings (admin)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer, e *env) int {
			return runAction(ctx, w, e, actionApprove, args)
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel ID...",
	Short: "Cancel bookings (admin)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runCommand(func(ctx context.Context, w io.Writer, e *env) int {
			return runAction(ctx, w, e, actionCancel, args)
		})
	},
}

func init() {
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(cancelCmd)
}

type action string

const (
	actionApprove action = "approve"
	actionCancel  action = "cancel"
)

// actionResult is the outcome for one booking id
type actionResult struct {
	id  int
	err error
}

// runAction applies an admin action to each id and returns the worst exit code
func runAction(ctx context.Context, w io.Writer, e *env, act action, args []string) int {
	ids, err := parseIDs(args)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}

	wf := e.newWorkflow()
	if err := wf.Refresh(ctx); err != nil {
		fmt.Fprintf(w, "Error: %s\n", describeError(err))
		return exitCodeFor(err)
	}

	results := applyAction(ctx, wf, act, ids)

	if IsJSONOutput() {
		fmt.Fprintln(w, formatActionJSON(act, results))
	} else {
		fmt.Fprintln(w, formatActionHuman(act, results))
	}

	code := exitOK
	for _, r := range results {
		if c := exitCodeFor(r.err); c > code {
			code = c
		}
	}
	return code
}

// applyAction runs the action for every id concurrently. Results keep argument order.
func applyAction(ctx context.Context, wf *workflow.Workflow, act action, ids []int) []actionResult {
	results := make([]actionResult, len(ids))

	var g errgroup.Group
	g.SetLimit(maxConcurrentActions)
	for i, id := range ids {
		g.Go(func() error {
			var err error
			switch act {
			case actionApprove:
				err = wf.Approve(ctx, id)
			case actionCancel:
				err = wf.Cancel(ctx, id)
			}
			results[i] = actionResult{id: id, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	seen := make(map[int]bool, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(strings.TrimPrefix(arg, "#"))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid booking id %q", arg)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func pastTense(act action) string {
	if act == actionApprove {
		return "approved"
	}
	return "cancelled"
}

// formatActionHuman formats per-booking outcomes for human readability
func formatActionHuman(act action, results []actionResult) string {
	var lines []string
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			lines = append(lines, fmt.Sprintf("✗ #%d: %s", r.id, describeError(r.err)))
			continue
		}
		lines = append(lines, fmt.Sprintf("✓ #%d %s", r.id, pastTense(act)))
	}

	if failed > 0 {
		lines = append(lines, fmt.Sprintf("\nFAILED: %d of %d booking(s) not %s", failed, len(results), pastTense(act)))
	}
	return strings.Join(lines, "\n")
}

// formatActionJSON formats per-booking outcomes as JSON
func formatActionJSON(act action, results []actionResult) string {
	rows := make([]map[string]interface{}, len(results))
	for i, r := range results {
		row := map[string]interface{}{
			"id":      r.id,
			"action":  string(act),
			"success": r.err == nil,
		}
		if r.err != nil {
			row["error"] = describeError(r.err)
		}
		rows[i] = row
	}
	data, _ := json.MarshalIndent(rows, "", "  ")
	return string(data)
}
