// Argus CLI — инструмент командной строки для управления
// graphs, runs и schedules через HTTP API и локального запуска review.
//
// Использование:
//
//	argus [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	graph     Управление review graphs
//	run       Управление runs
//	schedule  Управление schedules
//	review    Локальный запуск review против цели
//
// Коды выхода:
//
//	0 — успех
//	1 — ошибка выполнения
//	2 — review --fail-on: найдены findings с серьёзностью не ниже порога
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Argus/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "argus",
		Short:         "Argus CLI — review orchestration tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewGraphCmd(clientFn, outputFn),
		cli.NewRunsCmd(clientFn, outputFn),
		cli.NewScheduleCmd(clientFn, outputFn),
		cli.NewReviewCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, cli.ErrSeverityThreshold) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
