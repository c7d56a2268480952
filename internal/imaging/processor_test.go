package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func encodeTestImage(t *testing.T, w, h int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			t.Fatalf("encoding png: %v", err)
		}
	default:
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			t.Fatalf("encoding jpeg: %v", err)
		}
	}
	return buf.Bytes()
}

func TestPrepareUploadDownscales(t *testing.T) {
	p := NewProcessor()
	data := encodeTestImage(t, 3200, 2400, "jpeg")

	prepared, err := p.PrepareUpload(bytes.NewReader(data), "Spring Festival")
	if err != nil {
		t.Fatalf("PrepareUpload: %v", err)
	}

	if prepared.Width > DefaultMaxDimension || prepared.Height > DefaultMaxDimension {
		t.Errorf("dimensions %dx%d exceed max %d", prepared.Width, prepared.Height, DefaultMaxDimension)
	}
	// Aspect ratio survives the fit.
	if prepared.Width != DefaultMaxDimension {
		t.Errorf("width = %d, want %d for a landscape input", prepared.Width, DefaultMaxDimension)
	}
	if prepared.ContentType != "image/jpeg" {
		t.Errorf("content type = %q", prepared.ContentType)
	}
	if !strings.HasPrefix(prepared.Filename, "spring-festival-") {
		t.Errorf("filename = %q, want slug prefix", prepared.Filename)
	}
	if !strings.HasSuffix(prepared.Filename, ".jpg") {
		t.Errorf("filename = %q, want .jpg suffix", prepared.Filename)
	}
	if len(prepared.Data) == 0 {
		t.Error("no encoded data")
	}
}

func TestPrepareUploadKeepsSmallImages(t *testing.T) {
	p := NewProcessor()
	data := encodeTestImage(t, 640, 480, "png")

	prepared, err := p.PrepareUpload(bytes.NewReader(data), "포스터")
	if err != nil {
		t.Fatalf("PrepareUpload: %v", err)
	}
	if prepared.Width != 640 || prepared.Height != 480 {
		t.Errorf("small image resized to %dx%d", prepared.Width, prepared.Height)
	}
	if prepared.ContentType != "image/png" {
		t.Errorf("content type = %q, want png preserved", prepared.ContentType)
	}
}

func TestPrepareUploadFallbackFilename(t *testing.T) {
	p := NewProcessor()
	data := encodeTestImage(t, 10, 10, "jpeg")

	prepared, err := p.PrepareUpload(bytes.NewReader(data), "!!!")
	if err != nil {
		t.Fatalf("PrepareUpload: %v", err)
	}
	if !strings.HasPrefix(prepared.Filename, "event-") {
		t.Errorf("filename = %q, want fallback slug", prepared.Filename)
	}
}

func TestPrepareUploadRejectsGarbage(t *testing.T) {
	p := NewProcessor()
	if _, err := p.PrepareUpload(strings.NewReader("not an image"), "x"); err == nil {
		t.Fatal("expected error for non-image data")
	}
}

func TestExtractGPSWithoutExif(t *testing.T) {
	data := encodeTestImage(t, 10, 10, "jpeg")
	if _, ok := ExtractGPS(bytes.NewReader(data)); ok {
		t.Error("image without EXIF should report no GPS position")
	}
}

func TestApplyOrientation(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))

	// Rotating orientations swap the dimensions.
	for _, o := range []int{5, 6, 7, 8} {
		got := applyOrientation(img, o)
		if got.Bounds().Dx() != 2 || got.Bounds().Dy() != 4 {
			t.Errorf("orientation %d: bounds %v, want 2x4", o, got.Bounds())
		}
	}
	// Flips and identity keep them.
	for _, o := range []int{1, 2, 3, 4, 0, 9} {
		got := applyOrientation(img, o)
		if got.Bounds().Dx() != 4 || got.Bounds().Dy() != 2 {
			t.Errorf("orientation %d: bounds %v, want 4x2", o, got.Bounds())
		}
	}
}

func TestDetectFormat(t *testing.T) {
	jpegData := encodeTestImage(t, 4, 4, "jpeg")
	if got := detectFormat(jpegData); got != "jpeg" {
		t.Errorf("detectFormat(jpeg) = %q", got)
	}
	pngData := encodeTestImage(t, 4, 4, "png")
	if got := detectFormat(pngData); got != "png" {
		t.Errorf("detectFormat(png) = %q", got)
	}
	if got := detectFormat([]byte("plain text")); got != "" {
		t.Errorf("detectFormat(text) = %q, want empty", got)
	}
}

func TestSupportedExtension(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"poster.jpg", true},
		{"poster.JPEG", true},
		{"chart.png", true},
		{"anim.gif", true},
		{"photo.webp", true},
		{"doc.pdf", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := SupportedExtension(tt.name); got != tt.want {
			t.Errorf("SupportedExtension(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPreparedSaveTo(t *testing.T) {
	p := NewProcessor()
	data := encodeTestImage(t, 50, 50, "png")

	prepared, err := p.PrepareUpload(bytes.NewReader(data), "Open Day")
	if err != nil {
		t.Fatalf("PrepareUpload: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "uploads")
	path, err := prepared.SaveTo(dir)
	if err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved copy: %v", err)
	}
	if !bytes.Equal(saved, prepared.Data) {
		t.Error("saved copy differs from prepared data")
	}
	if filepath.Base(path) != prepared.Filename {
		t.Errorf("path = %q, want filename %q", path, prepared.Filename)
	}
}
