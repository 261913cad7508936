package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
)

// DefaultPDFDPI is the resolution used to rasterize PDF map pages.
const DefaultPDFDPI = 150.0

// ImageLoadError reports that a map image could not be read or decoded.
type ImageLoadError struct {
	Path string
	Err  error
}

func (e *ImageLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load image: %v", e.Err)
	}
	return fmt.Sprintf("failed to load image %s: %v", e.Path, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// ImageCache provides thread-safe caching of decoded map images keyed by path.
//
// Raster formats (PNG, JPEG, GIF, TIFF, BMP) are decoded with EXIF
// auto-orientation applied. PDF documents are rasterized: the first page is
// rendered at the cache's DPI.
//
// Cached images remain in memory until removed via Evict() or Clear().
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/maps/olomouc.tif")
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
	pdfDPI float64
}

// NewImageCache creates an empty cache that renders PDFs at DefaultPDFDPI.
func NewImageCache() *ImageCache {
	return NewImageCacheWithDPI(DefaultPDFDPI)
}

// NewImageCacheWithDPI creates an empty cache with a custom PDF render DPI.
func NewImageCacheWithDPI(dpi float64) *ImageCache {
	if dpi <= 0 {
		dpi = DefaultPDFDPI
	}
	return &ImageCache{
		images: make(map[string]image.Image),
		pdfDPI: dpi,
	}
}

// Load retrieves an image from the cache or loads it from disk if not cached.
//
// Any failure is returned as *ImageLoadError. The image is cached under the
// exact path string provided.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	var (
		img image.Image
		err error
	)
	if isPDF(path) {
		img, err = renderPDFPage(path, c.pdfDPI)
	} else {
		img, err = decodeFile(path)
	}
	if err != nil {
		return nil, &ImageLoadError{Path: path, Err: err}
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Decode decodes an in-memory raster image. Failures are *ImageLoadError.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &ImageLoadError{Err: fmt.Errorf("empty image data")}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &ImageLoadError{Err: err}
	}
	if err := checkDimensions(img); err != nil {
		return nil, &ImageLoadError{Err: err}
	}
	return img, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := checkDimensions(img); err != nil {
		return nil, err
	}
	return img, nil
}

func renderPDFPage(path string, dpi float64) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf page: %w", err)
	}
	return img, nil
}

func checkDimensions(img image.Image) error {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("image has no pixels (%dx%d)", b.Dx(), b.Dy())
	}
	return nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ImageInfo contains metadata about a loaded map file.
type ImageInfo struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
	ColorDepth    string `json:"color_depth"`
	HasAlpha      bool   `json:"has_alpha"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// LoadImageInfo loads an image through the cache and reports its metadata.
//
// The format is derived from the file extension: png, jpeg, gif, tiff, bmp,
// pdf, or unknown.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        FormatFromExt(path),
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
	}, nil
}

// FormatFromExt maps a file extension to a format name.
func FormatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".tif", ".tiff":
		return "tiff"
	case ".bmp":
		return "bmp"
	case ".pdf":
		return "pdf"
	}
	return "unknown"
}

// ValidateExtension checks path against an allow-list of extensions such as
// ".png". Comparison is case-insensitive.
func ValidateExtension(path string, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if strings.ToLower(a) == ext {
			return nil
		}
	}
	return fmt.Errorf("unsupported file type %q (allowed: %s)", ext, strings.Join(allowed, ", "))
}
