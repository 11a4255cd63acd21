package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/rotcurve/internal/core/model"
	"github.com/agenthands/rotcurve/internal/present"
)

type exportFlags struct {
	csv string
	png string
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.csv, "csv", "", "write the result as CSV to this file")
	cmd.Flags().StringVar(&f.png, "png", "", "write a chart of the result to this PNG file")
}

var (
	computeFlags exportFlags
	globalFlags  exportFlags
	dwarfsFlags  exportFlags
)

var computeCmd = &cobra.Command{
	Use:   "compute ARCHIVE GALAXY",
	Short: "Evaluate one galaxy on the backend",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompute,
}

var globalCmd = &cobra.Command{
	Use:   "global ARCHIVE",
	Short: "Send every galaxy for a global RMS",
	Args:  cobra.ExactArgs(1),
	RunE:  aggregateRunner(model.AggregateGlobal, &globalFlags),
}

var dwarfsCmd = &cobra.Command{
	Use:   "dwarfs ARCHIVE",
	Short: "Send every galaxy for the backend's dwarf subset RMS",
	Args:  cobra.ExactArgs(1),
	RunE:  aggregateRunner(model.AggregateDwarfs, &dwarfsFlags),
}

func init() {
	computeFlags.register(computeCmd)
	globalFlags.register(globalCmd)
	dwarfsFlags.register(dwarfsCmd)
}

func runCompute(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	sess, err := a.open(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	res, err := sess.RunGalaxy(cmd.Context(), args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d point(s)\n", res.Galaxy, len(res.Curve))
	fmt.Fprintln(out, present.CurveTable(res))
	return export(out, computeFlags,
		func(w io.Writer) error { return present.WriteCurveCSV(w, res) },
		func(w io.Writer) error { return present.RenderCurvePNG(w, res) })
}

func aggregateRunner(kind model.AggregateKind, flags *exportFlags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		sess, err := a.open(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		res, err := sess.RunAggregate(cmd.Context(), kind)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d galaxies\n", res.Label, res.Count)
		fmt.Fprintln(out, present.AggregateTable(res))
		return export(out, *flags,
			func(w io.Writer) error { return present.WriteAggregateCSV(w, res) },
			func(w io.Writer) error { return present.RenderAggregatePNG(w, res) })
	}
}

func export(out io.Writer, flags exportFlags, csvFn, pngFn func(io.Writer) error) error {
	if flags.csv != "" {
		if err := writeFile(flags.csv, csvFn); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", flags.csv)
	}
	if flags.png != "" {
		if err := writeFile(flags.png, pngFn); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", flags.png)
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
