package cmd

import (
	"fmt"
	"io"
	"reflect"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mwhitlock/tracetrim/internal/preset"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List filter presets and their settings",
	Long: `Show the trace and network filter presets with the rules each one
enables. Presets are fixed bundles; pick one with --preset on the trace and
network commands.`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Trace filter:")
	traceRows := make([]reflect.Value, 0, len(preset.Names()))
	for _, name := range preset.Names() {
		opts, err := preset.Trace(name)
		if err != nil {
			return err
		}
		traceRows = append(traceRows, reflect.ValueOf(opts))
	}
	printToggleTable(out, traceRows)

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Network filter:")
	networkRows := make([]reflect.Value, 0, len(preset.Names()))
	for _, name := range preset.Names() {
		opts, err := preset.Network(name)
		if err != nil {
			return err
		}
		networkRows = append(networkRows, reflect.ValueOf(opts))
	}
	printToggleTable(out, networkRows)

	return nil
}

// printToggleTable renders one row per option toggle with a column per
// preset, in the order returned by preset.Names.
func printToggleTable(out io.Writer, rows []reflect.Value) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprint(tw, "RULE")
	for _, name := range preset.Names() {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprintln(tw)

	typ := rows[0].Type()
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type.Kind() != reflect.Bool {
			continue
		}
		fmt.Fprint(tw, typ.Field(i).Name)
		for _, row := range rows {
			fmt.Fprintf(tw, "\t%s", mark(row.Field(i).Bool()))
		}
		fmt.Fprintln(tw)
	}

	tw.Flush()
}

func mark(enabled bool) string {
	if enabled {
		return "on"
	}
	return "-"
}
