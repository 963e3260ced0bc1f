// This tool summarizes a directory tree of field recordings by station and
// writes the table to <dir>/<dir name>_station_info.csv.
//
//	stationinfo [-v] [-o out.csv] dir
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/cwbudde/wavmeta"
	pkgerrors "github.com/pkg/errors"
)

var errMissingDir = errors.New("missing directory argument")

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
	fs := flag.NewFlagSet("stationinfo", flag.ContinueOnError)
	fs.SetOutput(errOut)

	outPath := fs.String("o", "", "Output CSV path, defaults to <dir>/<dir name>_station_info.csv")
	verbose := fs.Bool("v", false, "Log skipped files and metadata fallbacks")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return errMissingDir
	}

	dir, err := expandHome(fs.Arg(0))
	if err != nil {
		return err
	}

	dir = filepath.Clean(dir)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	target := *outPath
	if target == "" {
		target = filepath.Join(dir, filepath.Base(dir)+"_station_info.csv")
	}

	fmt.Fprint(out, "Building station info table... ")

	stations, err := wavmeta.BuildStations(ctx, dir, wavmeta.NewResolver(wavmeta.WithLogger(logger)))
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to summarize %q", dir)
	}

	f, err := os.Create(target)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create %q", target)
	}

	err = wavmeta.WriteStationTable(f, stations)
	if err != nil {
		f.Close()
		return pkgerrors.Wrapf(err, "failed to write %q", target)
	}

	if err := f.Close(); err != nil {
		return pkgerrors.Wrapf(err, "failed to close %q", target)
	}

	fmt.Fprintf(out, "done, %d stations written to %s\n", len(stations), target)

	return nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	usr, err := user.Current()
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to get the user home directory")
	}

	return strings.Replace(path, "~", usr.HomeDir, 1), nil
}
