// This tool lists every clip of the wav files in a directory tree for
// manual review and writes the table to <dir>/<dir name>_review_full.csv.
//
//	reviewfile [-clip 12] [-interval 12] [-o out.csv] dir
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cwbudde/wavmeta"
	pkgerrors "github.com/pkg/errors"
)

var (
	errMissingDir  = errors.New("missing directory argument")
	errBadInterval = errors.New("clip length and interval must be positive")
)

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingDir) {
		fmt.Println("Please provide the path to the target directory.")
		os.Exit(1)
	}

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("reviewfile", flag.ContinueOnError)
	fs.SetOutput(errOut)

	clipLength := fs.Float64("clip", 12, "Clip length in seconds")
	interval := fs.Float64("interval", 12, "Seconds between clip starts, clips overlap when shorter than -clip")
	outPath := fs.String("o", "", "Output CSV path, defaults to <dir>/<dir name>_review_full.csv")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return errMissingDir
	}

	if *clipLength <= 0 || *interval <= 0 {
		return errBadInterval
	}

	dir := filepath.Clean(fs.Arg(0))

	target := *outPath
	if target == "" {
		target = filepath.Join(dir, filepath.Base(dir)+"_review_full.csv")
	}

	clips, err := wavmeta.BuildReview(ctx, dir, *clipLength, *interval)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to list clips in %q", dir)
	}

	f, err := os.Create(target)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create %q", target)
	}

	err = wavmeta.WriteReviewTable(f, clips)
	if err != nil {
		f.Close()
		return pkgerrors.Wrapf(err, "failed to write %q", target)
	}

	if err := f.Close(); err != nil {
		return pkgerrors.Wrapf(err, "failed to close %q", target)
	}

	fmt.Fprintf(out, "%d lines written to %s\n", len(clips), filepath.Base(target))

	return nil
}
