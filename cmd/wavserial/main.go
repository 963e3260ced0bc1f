// This tool prints the recorder serial number of wav files as CSV rows of
// path, serial and the metadata source it came from.
//
//	wavserial [-v] [-no-guano] [-dir root] [file.wav ...]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cwbudde/wavmeta"
	pkgerrors "github.com/pkg/errors"
)

var errNoInput = errors.New("no input files")

func main() {
	err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("wavserial", flag.ContinueOnError)
	fs.SetOutput(errOut)

	dir := fs.String("dir", "", "Directory tree to scan for wav files")
	verbose := fs.Bool("v", false, "Log why each metadata source was skipped")
	noGuano := fs.Bool("no-guano", false, "Don't fall back to the GUANO block")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	paths := fs.Args()

	if *dir != "" {
		found, err := wavmeta.FindWavs(*dir)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to list %q", *dir)
		}

		paths = append(paths, found...)
	}

	if len(paths) == 0 {
		fs.Usage()
		return errNoInput
	}

	opts := []wavmeta.ResolverOption{wavmeta.WithLogger(logger)}
	if *noGuano {
		opts = append(opts, wavmeta.WithGuano(nil))
	}

	results, err := wavmeta.NewResolver(opts...).ResolveMany(ctx, paths...)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to resolve serial numbers")
	}

	w := csv.NewWriter(out)

	for _, res := range results {
		err := w.Write([]string{res.Path, res.Serial, res.Source.String()})
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to write the row for %q", res.Path)
		}
	}

	w.Flush()

	return w.Error()
}
