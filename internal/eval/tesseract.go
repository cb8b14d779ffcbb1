// Package eval scores decoder output against ground truth and against a
// reference OCR engine, for regression tracking of the template library.
package eval

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"linedecode/internal/bitmap"
)

// Engine wraps Tesseract as the reference recognizer for evaluation runs.
type Engine struct {
	client *gosseract.Client
}

// NewEngine creates a reference OCR engine configured for single lines.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Single text line; the decoder is also given one line at a time
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}

	// Disable dictionary correction - comparisons should see raw
	// character recognition, not language-model cleanup
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// SetWhitelist restricts recognition to the given character set.
// Pass the library's labels so both recognizers share an alphabet.
func (e *Engine) SetWhitelist(chars string) error {
	return e.client.SetWhitelist(chars)
}

// RecognizeLine runs the reference engine on a binarized line.
func (e *Engine) RecognizeLine(line *bitmap.Bitmap) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, line.ToImage()); err != nil {
		return "", fmt.Errorf("failed to encode line image: %w", err)
	}

	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	text = strings.TrimSpace(text)
	text = strings.Join(strings.Fields(text), " ")
	return text, nil
}
