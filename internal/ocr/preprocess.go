package ocr

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// minPreprocessWidth is the width small photos are upscaled to before recognition.
const minPreprocessWidth = 1200

// Preprocess applies EXIF auto-rotation, grayscale and a contrast boost, and
// re-encodes the image as PNG.
func Preprocess(image []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(image), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if img.Bounds().Dx() < minPreprocessWidth {
		img = imaging.Resize(img, minPreprocessWidth, 0, imaging.Lanczos)
	}
	gray := imaging.AdjustContrast(imaging.Grayscale(img), 30)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
