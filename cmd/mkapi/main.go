package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"mkapi/internal/config"
	"mkapi/internal/pipeline"
)

var (
	rootCmd = &cobra.Command{
		Use:          "mkapi",
		Short:        "API documentation generator for Python sources",
		SilenceUsage: true,
	}
	configPath string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(showCmd)
}

func newBuilder(cmd *cobra.Command) (*pipeline.Builder, error) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	cmd.SetContext(pipeline.WithLogger(cmd.Context(), logger))

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return pipeline.NewBuilder(cmd.Context(), cfg)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build Markdown API pages for the configured packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		builder, err := newBuilder(cmd)
		if err != nil {
			return err
		}
		return builder.Run(cmd.Context())
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump [path]",
	Short: "Save the resolved node tree as validated JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "node_tree.json"
		if len(args) == 1 {
			path = args[0]
		}
		builder, err := newBuilder(cmd)
		if err != nil {
			return err
		}
		return builder.Dump(cmd.Context(), path)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the rendered Markdown of one object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		builder, err := newBuilder(cmd)
		if err != nil {
			return err
		}
		node, err := builder.Resolve(args[0])
		if err != nil {
			return err
		}
		fmt.Println(node.RenderMarkdown(1))
		return nil
	},
}
