package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/plantkit/pkg/config"
	"github.com/chazu/plantkit/pkg/graph"
)

var version = "0.1.0-dev"

// errFailed signals that diagnostics were already printed.
var errFailed = errors.New("plantkit: run reported errors")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "plantkit",
		Short: "Generate industrial plant geometry from layout files",
		Long: `plantkit builds towers with helical stairways, tanks, pumps and the
ducts between them from a TOML or YAML layout file or a .zy layout
script, and writes the resulting meshes as JSON.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			*app = *NewApp(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log build progress to stderr")

	buildCmd := &cobra.Command{
		Use:   "build <layout>",
		Short: "Build a layout and write its meshes as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, app, args[0])
		},
	}
	buildCmd.Flags().StringP("out", "o", "-", "Mesh JSON output file, - for stdout")
	buildCmd.Flags().Int("resolution", 0, "Marching cubes cells along a part's longest side (0: layout or default)")
	buildCmd.Flags().Int("workers", 0, "Parallel meshing workers (0: layout or 1)")
	buildCmd.Flags().StringSlice("roles", nil, "Only mesh parts with these roles")

	validateCmd := &cobra.Command{
		Use:   "validate <layout>",
		Short: "Build a layout without meshing and report problems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, app, args[0])
		},
	}
	validateCmd.Flags().Bool("json", false, "Print a machine-readable summary")

	evalCmd := &cobra.Command{
		Use:   "eval <script>",
		Short: "Evaluate a layout script and print the layout it declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, app, args[0])
		},
	}
	evalCmd.Flags().String("format", string(config.FormatTOML), "Output format: toml|yaml")

	rootCmd.AddCommand(buildCmd, validateCmd, evalCmd)
	return rootCmd
}

func runBuild(cmd *cobra.Command, app *App, path string) error {
	opts := RenderOptions{}
	opts.Resolution, _ = cmd.Flags().GetInt("resolution")
	opts.Workers, _ = cmd.Flags().GetInt("workers")
	roles, _ := cmd.Flags().GetStringSlice("roles")
	for _, r := range roles {
		opts.Roles = append(opts.Roles, graph.Role(strings.TrimSpace(r)))
	}

	res := app.Open(cmd.Context(), path, opts)
	printDiagnostics(cmd.ErrOrStderr(), res)
	if !res.OK() {
		return errFailed
	}

	out, _ := cmd.Flags().GetString("out")
	w := cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("write meshes: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d meshes, %d triangles\n", res.Plant, res.Stats.Meshes, res.Stats.Triangles)
	return nil
}

func runValidate(cmd *cobra.Command, app *App, path string) error {
	res := app.Open(cmd.Context(), path, RenderOptions{NoMesh: true})
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Plant    string          `json:"plant"`
			OK       bool            `json:"ok"`
			Errors   []EvalErrorData `json:"errors"`
			Warnings []EvalErrorData `json:"warnings"`
			Stats    Stats           `json:"stats"`
		}{res.Plant, res.OK(), res.Errors, res.Warnings, res.Stats}); err != nil {
			return err
		}
	} else {
		printDiagnostics(cmd.ErrOrStderr(), res)
		s := res.Stats
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d equipment, %d ducts, %d nodes, %d primitives\n",
			res.Plant, s.Equipment, s.Ducts, s.Nodes, s.Primitives)
	}
	if !res.OK() {
		return errFailed
	}
	return nil
}

func runEval(cmd *cobra.Command, app *App, path string) error {
	format, _ := cmd.Flags().GetString("format")
	f, res, ok := app.Load(path)
	if !ok {
		printDiagnostics(cmd.ErrOrStderr(), res)
		return errFailed
	}
	data, err := config.Encode(f, config.Format(format))
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func printDiagnostics(w io.Writer, res EvalResult) {
	for _, e := range res.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
			continue
		}
		fmt.Fprintf(w, "error: %s\n", e.Message)
	}
	for _, e := range res.Warnings {
		fmt.Fprintf(w, "warning: %s\n", e.Message)
	}
}
