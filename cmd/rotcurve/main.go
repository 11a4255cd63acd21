// rotcurve loads SPARC-style rotation-curve archives and evaluates them
// against a remote compute backend.
//
// Usage:
//
//	rotcurve list ARCHIVE
//	rotcurve show ARCHIVE GALAXY [--csv FILE]
//	rotcurve compute ARCHIVE GALAXY [--csv FILE] [--png FILE]
//	rotcurve global ARCHIVE [--csv FILE] [--png FILE]
//	rotcurve dwarfs ARCHIVE [--csv FILE] [--png FILE]
//	rotcurve health
//	rotcurve micro
//
// ARCHIVE is a local path or an http(s) URL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
