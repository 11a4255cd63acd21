package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/rotcurve/internal/present"
)

var listCmd = &cobra.Command{
	Use:   "list ARCHIVE",
	Short: "List the galaxies an archive contains",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

var showFlags struct {
	csv string
}

var showCmd = &cobra.Command{
	Use:   "show ARCHIVE GALAXY",
	Short: "Print the normalized rows of one galaxy",
	Args:  cobra.ExactArgs(2),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFlags.csv, "csv", "", "also write the rows to this CSV file")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	sess, err := a.open(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, present.CatalogTable(sess.Catalog().ExportAll()))
	if report := present.ReportTable(sess.Report()); report != "" {
		fmt.Fprintf(out, "\n%d member(s) skipped:\n%s\n", len(sess.Report().Errors), report)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	sess, err := a.open(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	e, err := sess.Select(args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", e.Name, e.Member)
	fmt.Fprintln(out, present.RowsTable(*e))
	if showFlags.csv != "" {
		f, err := os.Create(showFlags.csv)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := present.WriteRowsCSV(f, *e); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", showFlags.csv)
	}
	return nil
}
