package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Argus/internal/domain"
	"github.com/shaiso/Argus/internal/engine"
	"github.com/shaiso/Argus/internal/orchestrator"
	"github.com/shaiso/Argus/internal/report"
)

// ErrSeverityThreshold возвращается командой review, если найдены
// findings с серьёзностью не ниже --fail-on. main транслирует её
// в код выхода 2, чтобы CI мог отличить "проблемы найдены" (2)
// от "review не удался" (1).
var ErrSeverityThreshold = errors.New("findings at or above severity threshold")

// NewReviewCmd создаёт команду локального запуска review.
// В отличие от остальных команд review не ходит в API:
// граф читается из файла, reviewers выполняются в текущем процессе.
func NewReviewCmd(outputFn func() *Output) *cobra.Command {
	var graphFile string
	var depth string
	var format string
	var failOn string
	var maxWorkers int

	cmd := &cobra.Command{
		Use:   "review TARGET",
		Short: "Run a review locally against a target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			switch depth {
			case "", engine.DepthQuick, engine.DepthStandard, engine.DepthDeep:
			default:
				return fmt.Errorf("unknown depth: %s", depth)
			}

			var renderFormat report.Format
			switch format {
			case "", "text":
				renderFormat = report.FormatText
			case "json":
				renderFormat = report.FormatJSON
			default:
				return fmt.Errorf("unknown format: %s", format)
			}

			var failSeverity domain.Severity
			if failOn != "" {
				sev, err := domain.ParseSeverity(failOn)
				if err != nil {
					return err
				}
				failSeverity = sev
			}

			graph, err := engine.LoadGraphFile(graphFile)
			if err != nil {
				return err
			}

			eng := orchestrator.New(orchestrator.Config{
				MaxWorkers: maxWorkers,
			})

			result, err := eng.Run(cmd.Context(), orchestrator.Request{
				Graph:  graph,
				Target: args[0],
				Depth:  depth,
			})
			if err != nil {
				return err
			}

			if err := report.Render(os.Stdout, result, renderFormat); err != nil {
				return err
			}

			if failSeverity != "" && result.HasFindingsAtOrAbove(failSeverity) {
				out.Error(fmt.Sprintf("findings with severity >= %s found", failSeverity))
				return ErrSeverityThreshold
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&graphFile, "graph", "", "Path to graph YAML file (required)")
	cmd.Flags().StringVar(&depth, "depth", "", "Depth preset: quick, standard or deep")
	cmd.Flags().StringVar(&format, "format", "text", "Report format: text or json")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit with code 2 if findings at or above this severity exist")
	cmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum parallel reviewers (default: engine default)")
	cmd.MarkFlagRequired("graph")

	return cmd
}
