package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Argus/internal/engine"
)

// NewGraphCmd создаёт группу команд для управления review graphs.
func NewGraphCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage review graphs",
	}

	cmd.AddCommand(
		newGraphListCmd(clientFn, outputFn),
		newGraphCreateCmd(clientFn, outputFn),
		newGraphShowCmd(clientFn, outputFn),
		newGraphUpdateCmd(clientFn, outputFn),
		newGraphDeleteCmd(clientFn, outputFn),
		newGraphVersionsCmd(clientFn, outputFn),
		newGraphPublishCmd(clientFn, outputFn),
		newGraphValidateCmd(outputFn),
	)

	return cmd
}

func newGraphListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all graphs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			graphs, err := client.ListGraphs()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "ACTIVE", "CREATED"}
			rows := make([][]string, len(graphs))
			for i, g := range graphs {
				rows[i] = []string{g.ID, g.Name, strconv.FormatBool(g.IsActive), g.CreatedAt}
			}

			out.Print(headers, rows, graphs)
			return nil
		},
	}
}

func newGraphCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var graphFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new graph, optionally with a first version",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var spec json.RawMessage
			if graphFile != "" {
				data, err := specFromFile(graphFile)
				if err != nil {
					return err
				}
				spec = data
			}

			graph, err := client.CreateGraph(name, spec)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Graph created: %s", graph.ID))
			out.Print(
				[]string{"ID", "NAME", "ACTIVE", "CREATED"},
				[][]string{{graph.ID, graph.Name, strconv.FormatBool(graph.IsActive), graph.CreatedAt}},
				graph,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Graph name (required)")
	cmd.Flags().StringVar(&graphFile, "graph-file", "", "Path to graph YAML file for the first version")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newGraphShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show graph details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			graph, err := client.GetGraph(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "ACTIVE", "CREATED"},
				[][]string{{graph.ID, graph.Name, strconv.FormatBool(graph.IsActive), graph.CreatedAt}},
				graph,
			)
			return nil
		},
	}
}

func newGraphUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var active string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateGraphRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("active") {
				b, err := strconv.ParseBool(active)
				if err != nil {
					return fmt.Errorf("invalid value for --active: %s", active)
				}
				req.IsActive = &b
			}

			graph, err := client.UpdateGraph(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Graph updated")
			out.Print(
				[]string{"ID", "NAME", "ACTIVE", "CREATED"},
				[][]string{{graph.ID, graph.Name, strconv.FormatBool(graph.IsActive), graph.CreatedAt}},
				graph,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New graph name")
	cmd.Flags().StringVar(&active, "active", "", "Set active status (true/false)")

	return cmd
}

func newGraphDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteGraph(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Graph deleted: %s", args[0]))
			return nil
		},
	}
}

func newGraphVersionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "versions GRAPH_ID",
		Short: "List graph versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			versions, err := client.ListVersions(args[0])
			if err != nil {
				return err
			}

			headers := []string{"GRAPH_ID", "VERSION", "CREATED"}
			rows := make([][]string, len(versions))
			for i, v := range versions {
				rows[i] = []string{v.GraphID, strconv.Itoa(v.Version), v.CreatedAt}
			}

			out.Print(headers, rows, versions)
			return nil
		},
	}
}

func newGraphPublishCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var graphFile string

	cmd := &cobra.Command{
		Use:   "publish GRAPH_ID",
		Short: "Publish a new graph version from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			spec, err := specFromFile(graphFile)
			if err != nil {
				return err
			}

			version, err := client.CreateVersion(args[0], spec)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Version %d published for graph %s", version.Version, version.GraphID))
			return nil
		},
	}

	cmd.Flags().StringVar(&graphFile, "graph-file", "", "Path to graph YAML file (required)")
	cmd.MarkFlagRequired("graph-file")

	return cmd
}

func newGraphValidateCmd(outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a graph YAML file locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			graph, err := engine.LoadGraphFile(args[0])
			if err != nil {
				return err
			}
			if _, err := engine.Load(graph, "", engine.NewPredicateSet()); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Graph %q is valid: %d reviewers", graph.Name, len(graph.Reviewers)))
			return nil
		},
	}
}

// specFromFile читает YAML-описание графа, валидирует его локально
// и возвращает JSON для отправки в API.
func specFromFile(path string) (json.RawMessage, error) {
	graph, err := engine.LoadGraphFile(path)
	if err != nil {
		return nil, err
	}
	if _, err := engine.Load(graph, "", engine.NewPredicateSet()); err != nil {
		return nil, err
	}

	data, err := json.Marshal(graph)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graph spec: %w", err)
	}
	return data, nil
}
