package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultTesseractLanguages covers Korean receipts with Latin store names.
const DefaultTesseractLanguages = "kor+eng"

// Tesseract runs the local tesseract binary. It reads the image from stdin
// and parses the TSV report so each line keeps its word confidences.
type Tesseract struct {
	binary    string
	languages string
}

// NewTesseract creates a Tesseract engine. Empty arguments use defaults.
func NewTesseract(binary, languages string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if languages == "" {
		languages = DefaultTesseractLanguages
	}
	return &Tesseract{binary: binary, languages: languages}
}

// Name implements Recognizer.
func (t *Tesseract) Name() string { return "tesseract" }

// Recognize implements Recognizer.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	cmd := exec.CommandContext(ctx, t.binary, "stdin", "stdout", "-l", t.languages, "tsv")
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseTSV(stdout.Bytes())
}

type lineKey struct {
	page, block, par, line int
}

// parseTSV groups word rows (level 5) into lines. Confidence is the mean
// word confidence scaled to [0, 1]; words with negative confidence are layout
// rows without text.
func parseTSV(data []byte) (*Recognition, error) {
	rec := &Recognition{Engine: "tesseract"}

	var (
		order []lineKey
		words = make(map[lineKey][]string)
		confs = make(map[lineKey][]float64)
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 12 || fields[0] != "5" {
			continue
		}
		conf, err := strconv.ParseFloat(fields[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(fields[11])
		if text == "" {
			continue
		}

		var key lineKey
		key.page, _ = strconv.Atoi(fields[1])
		key.block, _ = strconv.Atoi(fields[2])
		key.par, _ = strconv.Atoi(fields[3])
		key.line, _ = strconv.Atoi(fields[4])
		if _, ok := words[key]; !ok {
			order = append(order, key)
		}
		words[key] = append(words[key], text)
		confs[key] = append(confs[key], conf/100)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tesseract output: %w", err)
	}

	textLines := make([]string, 0, len(order))
	for _, key := range order {
		textLines = append(textLines, strings.Join(words[key], " "))
		sum := 0.0
		for _, c := range confs[key] {
			sum += c
		}
		rec.LineConfidences = append(rec.LineConfidences, sum/float64(len(confs[key])))
	}
	rec.Text = strings.Join(textLines, "\n")
	return rec, nil
}
