// Package debug provides debug visualization utilities for finished frames.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/softrender/internal/engine/framebuffer"
)

// ScreenshotCapture writes frames to timestamped PNG files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Capture saves the color buffer of fb.
func (sc *ScreenshotCapture) Capture(fb *framebuffer.Framebuffer) (string, error) {
	return sc.CaptureFromImage(fb.Image())
}

// CaptureFromPixels captures a screenshot from raw pixel data.
// pixels should be in RGBA format with width*height*4 bytes. Set flipY for
// bottom-up rows such as a GL read-back.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int, flipY bool) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		srcY := y
		if flipY {
			srcY = height - 1 - y
		}
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[srcY*rowSize:(srcY+1)*rowSize])
	}
	return sc.CaptureFromImage(img)
}

// CaptureFromImage captures a screenshot from an existing image.
func (sc *ScreenshotCapture) CaptureFromImage(img image.Image) (string, error) {
	filename := sc.GenerateFilename()
	if err := WritePNG(filename, img); err != nil {
		return "", err
	}
	return filename, nil
}

// GenerateFilename generates a screenshot filename without saving.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := sc.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", sc.prefix, timestamp)
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}

// WritePNG encodes img to path, creating parent directories as needed.
func WritePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}

// PNGPresenter writes every presented frame to Path, overwriting the
// previous one.
type PNGPresenter struct {
	Path   string
	Frames int
}

// Present implements scene.Presenter.
func (p *PNGPresenter) Present(fb *framebuffer.Framebuffer) error {
	if err := WritePNG(p.Path, fb.Image()); err != nil {
		return err
	}
	p.Frames++
	return nil
}
