// Package imaging shrinks uploaded pictures before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP decoder
)

// ErrNotImage is returned for data that is not a supported image.
var ErrNotImage = errors.New("unsupported image format")

const (
	DefaultMaxWidth  = 1200
	DefaultMaxHeight = 1200
	DefaultQuality   = 80
)

// Compressor bounds image dimensions and re-encodes at a target quality.
type Compressor struct {
	MaxWidth  int
	MaxHeight int
	// Quality is the JPEG quality, 1-100.
	Quality int
}

// Result is a compressed image.
type Result struct {
	Name        string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	Resized     bool
}

// NewCompressor applies defaults for zero values.
func NewCompressor(maxWidth, maxHeight, quality int) *Compressor {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return &Compressor{MaxWidth: maxWidth, MaxHeight: maxHeight, Quality: quality}
}

// IsImage reports whether data sniffs as a format Compress accepts.
func IsImage(data []byte) bool {
	return formatOf(data) != ""
}

// Compress decodes data (applying EXIF orientation), fits it inside the
// bounds without upscaling and re-encodes it. WebP input is re-encoded as
// JPEG and renamed accordingly. Output is deterministic for a given input.
func (c *Compressor) Compress(name string, data []byte) (*Result, error) {
	format := formatOf(data)
	if format == "" {
		return nil, ErrNotImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := false
	bounds := img.Bounds()
	if bounds.Dx() > c.MaxWidth || bounds.Dy() > c.MaxHeight {
		img = imaging.Fit(img, c.MaxWidth, c.MaxHeight, imaging.Lanczos)
		resized = true
	}

	outFormat := format
	if format == "webp" {
		outFormat = "jpeg"
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	}

	encoded, err := c.encode(img, outFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	if !resized && outFormat == format && len(encoded) >= len(data) {
		encoded = data
	}

	final := img.Bounds()
	return &Result{
		Name:        name,
		ContentType: "image/" + outFormat,
		Data:        encoded,
		Width:       final.Dx(),
		Height:      final.Dy(),
		Resized:     resized,
	}, nil
}

func (c *Compressor) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case "gif":
		err = imaging.Encode(&buf, img, imaging.GIF)
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(c.Quality))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatOf(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return ""
	}
}
