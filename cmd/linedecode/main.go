// Command linedecode decodes binarized text-line images against a trained
// template library and prints the recognized characters with positions
// and confidence scores.
//
// Usage: linedecode [options] <line-image> [<line-image>...]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"linedecode/internal/bitmap"
	"linedecode/internal/decode"
	"linedecode/internal/preprocess"
	"linedecode/internal/template"
)

var (
	flagLib       = flag.String("lib", "", "Template library path (default: config dir)")
	flagThreshold = flag.Int("threshold", bitmap.DefaultThreshold, "Binarization threshold (0-255)")
	flagPrep      = flag.Bool("prep", false, "Run full scan preprocessing (CLAHE + Otsu) instead of fixed threshold")
	flagRescore   = flag.Bool("rescore", true, "Rescore segments against raw samples")
	flagJSON      = flag.Bool("json", false, "Emit segments as JSON")
	flagVerbose   = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: linedecode [options] <line-image> [<line-image>...]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	libPath := *flagLib
	if libPath == "" {
		var err error
		libPath, err = template.DefaultLibraryPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	lib, err := template.LoadLibrary(libPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading library: %v\n", err)
		os.Exit(1)
	}
	if *flagVerbose {
		fmt.Printf("Library: %d classes, max template width %d\n", lib.Len(), lib.MaxTemplateWidth())
	}

	exitCode := 0
	for _, path := range flag.Args() {
		if err := decodeOne(lib, path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func decodeOne(lib *template.Library, path string) error {
	var line *bitmap.Bitmap
	var err error
	if *flagPrep {
		line, err = preprocess.LoadLine(path, preprocess.DefaultParams())
	} else {
		line, err = bitmap.Load(path, uint8(*flagThreshold))
	}
	if err != nil {
		return err
	}

	segs, err := decode.DecodeLine(lib, line, *flagRescore)
	if err != nil {
		return err
	}

	if *flagJSON {
		data, err := json.MarshalIndent(segs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s: %q (mean score %.3f)\n", path, decode.Text(segs), decode.MeanScore(segs))
	if *flagVerbose {
		for _, s := range segs {
			fmt.Printf("  %-4q x=%-5d shift=%-2d width=%-4d score=%.3f", s.Label, s.X, s.YShift, s.Width, s.Score)
			if s.Sample >= 0 {
				fmt.Printf(" sample=%d", s.Sample)
			}
			fmt.Println()
		}
	}
	return nil
}
