// Command lineeval compares the template decoder against Tesseract on
// line images with known ground truth. Each line image must have a
// sibling .txt file holding its transcription.
//
// Usage: lineeval [options] <line-image> [<line-image>...]
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"linedecode/internal/bitmap"
	"linedecode/internal/decode"
	"linedecode/internal/eval"
	"linedecode/internal/template"
)

var (
	flagLib       = flag.String("lib", "", "Template library path (default: config dir)")
	flagThreshold = flag.Int("threshold", bitmap.DefaultThreshold, "Binarization threshold (0-255)")
	flagTesseract = flag.Bool("tesseract", true, "Also run Tesseract for comparison")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lineeval [options] <line-image> [<line-image>...]")
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

	var engine *eval.Engine
	if *flagTesseract {
		engine, err = eval.NewEngine()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting Tesseract: %v\n", err)
			os.Exit(1)
		}
		defer engine.Close()

		// Share the decoder's alphabet so the comparison is fair
		var labels strings.Builder
		for _, c := range lib.Classes {
			labels.WriteString(c.Label)
		}
		_ = engine.SetWhitelist(labels.String())
	}

	var decoderScores, tessScores []float64
	for _, path := range flag.Args() {
		truth, err := readTruth(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}

		line, err := bitmap.Load(path, uint8(*flagThreshold))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			continue
		}

		segs, err := decode.DecodeLine(lib, line, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: decode failed: %v\n", path, err)
			continue
		}
		decoded := decode.Text(segs)
		decScore := eval.Similarity(decoded, truth)
		decoderScores = append(decoderScores, decScore)

		fmt.Printf("%s\n  truth:   %q\n  decoder: %q (%.3f)\n", path, truth, decoded, decScore)

		if engine != nil {
			tessText, err := engine.RecognizeLine(line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  tesseract failed: %v\n", err)
				continue
			}
			tessScore := eval.Similarity(tessText, truth)
			tessScores = append(tessScores, tessScore)
			fmt.Printf("  tesseract: %q (%.3f)\n", tessText, tessScore)
		}
	}

	printSummary("decoder", eval.Summarize(decoderScores))
	if len(tessScores) > 0 {
		printSummary("tesseract", eval.Summarize(tessScores))
	}
}

func printSummary(name string, s eval.Summary) {
	if s.Lines == 0 {
		return
	}
	fmt.Printf("%s: %d lines, mean=%.3f std=%.3f min=%.3f perfect=%d\n",
		name, s.Lines, s.Mean, s.StdDev, s.Min, s.Perfect)
}

// readTruth loads the sibling .txt transcription for a line image.
func readTruth(imagePath string) (string, error) {
	ext := strings.LastIndex(imagePath, ".")
	if ext < 0 {
		ext = len(imagePath)
	}
	data, err := os.ReadFile(imagePath[:ext] + ".txt")
	if err != nil {
		return "", fmt.Errorf("missing ground truth: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
