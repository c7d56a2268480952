// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging prepares images for event submissions using pure Go
// libraries: decode, EXIF-aware rotation, downscaling and re-encoding,
// plus EXIF GPS extraction to prefill the event position from a photo.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/nexus/campusmap/internal/model"
	"github.com/nexus/campusmap/internal/util"
)

// Processing defaults.
const (
	DefaultMaxDimension = 1600 // Longest edge after downscaling
	DefaultJPEGQuality  = 85
)

// Prepared is an image ready for multipart upload.
type Prepared struct {
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Processor prepares uploaded images.
type Processor struct {
	maxDimension int
	jpegQuality  int
}

// NewProcessor creates a Processor with default limits.
func NewProcessor() *Processor {
	return &Processor{
		maxDimension: DefaultMaxDimension,
		jpegQuality:  DefaultJPEGQuality,
	}
}

// PrepareUpload reads an image, applies EXIF orientation, downscales it
// to the configured maximum dimension and re-encodes it. The resulting
// filename is a slug of the event title plus a random suffix; EXIF
// metadata does not survive re-encoding, so location and device details
// are stripped from the upload as a side effect.
func (p *Processor) PrepareUpload(r io.Reader, title string) (*Prepared, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	orientation := readExifOrientation(bytes.NewReader(data))
	img = applyOrientation(img, orientation)

	bounds := img.Bounds()
	if bounds.Dx() > p.maxDimension || bounds.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
		bounds = img.Bounds()
	}

	encoded, outFormat, err := p.encode(img, format)
	if err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	slug := util.SlugifyOr(title, "event")
	filename := fmt.Sprintf("%s-%s%s", slug, uuid.NewString()[:8], formatExtension(outFormat))

	return &Prepared{
		Filename:    filename,
		ContentType: formatToMimeType(outFormat),
		Data:        encoded,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// SaveTo writes the prepared image into dir, creating it if needed,
// and returns the full path. Used to keep a local copy of submissions
// next to the client state.
func (p *Prepared) SaveTo(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads dir: %w", err)
	}
	path := filepath.Join(dir, p.Filename)
	if err := os.WriteFile(path, p.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing upload copy: %w", err)
	}
	return path, nil
}

// ExtractGPS reads the EXIF GPS position from an original photo. Used
// to prefill the event coordinates before the user confirms them on
// the map. Photos without usable GPS data return ok=false, not an
// error.
func ExtractGPS(r io.Reader) (model.Position, bool) {
	x, err := exif.Decode(r)
	if err != nil {
		return model.Position{}, false
	}
	lat, lon, err := x.LatLong()
	if err != nil {
		return model.Position{}, false
	}
	pos := model.Position{Lat: lat, Lon: lon}
	return pos, pos.Valid()
}

// encode re-encodes an image. WebP input falls back to JPEG output,
// since pure Go WebP encoding is unavailable.
func (p *Processor) encode(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "png", nil
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "gif", nil
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.jpegQuality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "jpeg", nil
	}
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	// Explicitly reject TIFF (CVE-2023-36308 in disintegration/imaging)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}

// formatExtension returns the file extension for a format.
func formatExtension(format string) string {
	switch format {
	case "png":
		return ".png"
	case "gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

// formatToMimeType converts a format string to a MIME type.
func formatToMimeType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// SupportedExtension reports whether a filename looks like a
// processable image.
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}
