package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRunsCmd создаёт группу команд для управления runs.
func NewRunsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage review runs",
	}

	cmd.AddCommand(
		newRunListCmd(clientFn, outputFn),
		newRunStartCmd(clientFn, outputFn),
		newRunShowCmd(clientFn, outputFn),
		newRunReportCmd(clientFn, outputFn),
		newRunFindingsCmd(clientFn, outputFn),
	)

	return cmd
}

func newRunListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var graphID string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListRuns(ListRunsOpts{
				GraphID: graphID,
				Status:  status,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "GRAPH_ID", "VER", "TARGET", "DEPTH", "STATUS", "CREATED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID, r.GraphID, strconv.Itoa(r.GraphVersion),
					r.Target, r.Depth, r.Status, r.CreatedAt,
				}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&graphID, "graph-id", "", "Filter by graph ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING/RUNNING/SUCCEEDED/FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of runs")

	return cmd
}

func newRunStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var target string
	var depth string
	var version int
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "start GRAPH_ID",
		Short: "Start a review run for a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateRunRequest{
				Target:         target,
				Depth:          depth,
				IdempotencyKey: idempotencyKey,
			}
			if cmd.Flags().Changed("version") {
				req.Version = &version
			}

			run, err := client.CreateRun(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run started: %s", run.ID))
			out.Print(
				[]string{"ID", "GRAPH_ID", "VER", "TARGET", "STATUS"},
				[][]string{{run.ID, run.GraphID, strconv.Itoa(run.GraphVersion), run.Target, run.Status}},
				run,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Review target, e.g. a repository path (required)")
	cmd.Flags().StringVar(&depth, "depth", "", "Depth preset: quick, standard or deep")
	cmd.Flags().IntVar(&version, "version", 0, "Graph version (default: latest)")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for deduplication")
	cmd.MarkFlagRequired("target")

	return cmd
}

func newRunShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.GetRun(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "GRAPH_ID", "VER", "TARGET", "DEPTH", "STATUS", "STARTED", "FINISHED"}
			rows := [][]string{{
				run.ID, run.GraphID, strconv.Itoa(run.GraphVersion),
				run.Target, run.Depth, run.Status, run.StartedAt, run.FinishedAt,
			}}

			out.Print(headers, rows, run)

			if run.Error != "" {
				out.Error(run.Error)
			}
			return nil
		},
	}
}

func newRunReportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "report RUN_ID",
		Short: "Show run report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			report, err := client.GetRunReport(args[0])
			if err != nil {
				return err
			}

			// Отчёт всегда печатается как JSON: табличное представление
			// теряет структуру секций.
			var v any
			if err := json.Unmarshal(report, &v); err != nil {
				return fmt.Errorf("failed to decode report: %w", err)
			}
			out.JSON(v)
			return nil
		},
	}
}

func newRunFindingsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var minSeverity string

	cmd := &cobra.Command{
		Use:   "findings RUN_ID",
		Short: "List findings of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			findings, err := client.ListRunFindings(args[0], minSeverity)
			if err != nil {
				return err
			}

			headers := []string{"SEVERITY", "CATEGORY", "FILE", "LINE", "SOURCE", "MESSAGE"}
			rows := make([][]string, len(findings))
			for i, f := range findings {
				rows[i] = []string{
					f.Severity, f.Category, f.File, strconv.Itoa(f.Line),
					f.SourceTaskID, f.Message,
				}
			}

			out.Print(headers, rows, findings)
			return nil
		},
	}

	cmd.Flags().StringVar(&minSeverity, "min-severity", "", "Minimum severity (low/medium/high/critical)")

	return cmd
}
