// Command linetrain builds a template library from labeled glyph samples.
// The sample directory contains one subdirectory per character label, each
// holding binarized sample images of that character.
//
// Usage: linetrain [options] <samples-dir>
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"linedecode/internal/bitmap"
	"linedecode/internal/template"
)

var (
	flagOut       = flag.String("out", "", "Output library path (default: config dir)")
	flagThreshold = flag.Int("threshold", bitmap.DefaultThreshold, "Binarization threshold (0-255)")
	flagVerbose   = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: linetrain [options] <samples-dir>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	sampleDir := flag.Arg(0)
	outPath := *flagOut
	if outPath == "" {
		var err error
		outPath, err = template.DefaultLibraryPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	trainer := template.NewTrainer()

	entries, err := os.ReadDir(sampleDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading sample dir: %v\n", err)
		os.Exit(1)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label := entry.Name()
		labelDir := filepath.Join(sampleDir, label)

		files, err := os.ReadDir(labelDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", labelDir, err)
			os.Exit(1)
		}

		// Deterministic sample order so training runs are reproducible
		names := make([]string, 0, len(files))
		for _, f := range files {
			if !f.IsDir() && bitmap.IsSupportedFormat(f.Name()) {
				names = append(names, f.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(labelDir, name)
			bm, err := bitmap.Load(path, uint8(*flagThreshold))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", path, err)
				os.Exit(1)
			}
			if err := trainer.AddSample(label, bm); err != nil {
				fmt.Fprintf(os.Stderr, "Error adding %s: %v\n", path, err)
				os.Exit(1)
			}
			if *flagVerbose {
				fmt.Printf("  %s: %s (%dx%d)\n", label, name, bm.Width, bm.Height)
			}
		}
	}

	fmt.Printf("Training: %d samples across %d classes\n", trainer.SampleCount(), trainer.ClassCount())

	lib, err := trainer.Finish()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Training failed: %v\n", err)
		os.Exit(1)
	}

	if err := lib.Save(outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving library: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Saved library: %d classes, max template width %d, to %s\n",
		lib.Len(), lib.MaxTemplateWidth(), outPath)
}
