// This tool dumps the recorder metadata found in the passed wav file: the
// wamd fields, the GUANO block, LIST/INFO entries and the chunk layout.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/cwbudde/wavmeta"
)

const missingPathMessage = "You must pass the path of the file to inspect"

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errMissingPath) {
		fmt.Println(missingPathMessage)
		os.Exit(1)
	}

	log.Fatal(err)
}

var errMissingPath = errors.New("missing path argument")

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingPath
	}

	path := args[0]

	md, err := wavmeta.ReadMetadata(path, wavmeta.WithVendorNames())
	if err != nil {
		return err
	}

	serial, source := md.Serial()
	fmt.Fprintf(out, "File: %s\n", path)
	fmt.Fprintf(out, "Serial: %s (%s)\n", serial, source)

	if info, err := wavmeta.Inspect(path); err == nil {
		fmt.Fprintf(out, "Format: %d ch, %d Hz, %d bit, %s\n",
			info.Format.NumChannels, info.Format.SampleRate, info.BitDepth, info.Duration)
	}

	if md.Format != nil {
		fmt.Fprintf(out, "Encoding: %s\n", md.Format.FormatName())
	}

	if md.Wamd == nil && md.Guano == nil && md.Broadcast == nil && len(md.Info) == 0 {
		fmt.Fprintln(out, "No metadata present")
	}

	if md.Wamd != nil {
		fmt.Fprintln(out, "WAMD:")

		for _, key := range md.Wamd.Keys() {
			f, _ := md.Wamd.Get(key)
			fmt.Fprintf(out, "\t%s: %s\n", key, f)
		}

		for _, w := range md.Wamd.Warnings() {
			fmt.Fprintf(out, "\twarning: %s\n", w)
		}
	}

	if md.Guano != nil {
		fmt.Fprintln(out, "GUANO:")

		for _, key := range md.Guano.Keys() {
			v, _ := md.Guano.Get(key)
			fmt.Fprintf(out, "\t%s: %s\n", key, v)
		}
	}

	if b := md.Broadcast; b != nil {
		fmt.Fprintln(out, "BEXT:")
		fmt.Fprintf(out, "\tOriginator: %s\n", b.Originator)
		fmt.Fprintf(out, "\tDescription: %s\n", b.Description)

		if start, ok := b.Origination(time.Local); ok {
			fmt.Fprintf(out, "\tOrigination: %s\n", start.Format(time.DateTime))
		} else if b.OriginationDate != "" || b.OriginationTime != "" {
			fmt.Fprintf(out, "\tOrigination: %s %s\n", b.OriginationDate, b.OriginationTime)
		}
	}

	if len(md.Info) > 0 {
		fmt.Fprintln(out, "INFO:")

		for _, key := range slices.Sorted(maps.Keys(md.Info)) {
			fmt.Fprintf(out, "\t%s: %s\n", key, md.Info[key])
		}
	}

	fmt.Fprintln(out, "Chunks:")

	for _, ch := range md.Chunks {
		fmt.Fprintf(out, "\t%s\n", ch)
	}

	for _, err := range md.Errors {
		fmt.Fprintf(out, "Error: %v\n", err)
	}

	return nil
}
