// Command jingju computes statistics of the singing melody in jingju music
// scores: pitch and interval histograms, cadential notes, melodic density,
// ambitus and score searches over catalog lines selected by role type,
// mode, tempo class and line type.
//
// Results are printed to stdout as CSV; logs go to stderr.
//
// Usage:
//
//	jingju ph --catalog lines_data.csv --hd laosheng --sq erhuang
//	jingju cn --sq xipi --png cn-xp.png
//	jingju plots -p out -f ph,cn
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	apperrors "github.com/MTG/Jingju-Scores-Analysis/pkg/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs one command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if ferr := a.finish(); err == nil {
		err = ferr
	}
	if err != nil {
		fmt.Fprintf(stderr, "jingju: %v\n", err)
		return apperrors.ExitCode(err)
	}
	return apperrors.ExitOK
}
