package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/ironsheep/map-georef/internal/model"
)

// Format identifies an export file type.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatPNG     Format = "png"
	FormatWorld   Format = "world"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatGeoJSON, FormatPNG, FormatWorld:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ExportError reports a failed export.
type ExportError struct {
	Format Format
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// FormatInfo describes one export option for a processed map.
type FormatInfo struct {
	Format      Format `json:"format"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// AvailableFormats lists what can be exported: geojson when there are
// elements, world when the homography path succeeded, png always.
func AvailableFormats(analysis *model.AnalysisResult, geo *model.GeoreferenceResult) []FormatInfo {
	var out []FormatInfo
	if analysis != nil && len(analysis.Elements) > 0 {
		out = append(out, FormatInfo{Format: FormatGeoJSON, Description: "GeoJSON with detected elements", Available: true})
	}
	if precise(geo) {
		out = append(out, FormatInfo{Format: FormatWorld, Description: "PNG with world file and CRS sidecar", Available: true})
	}
	out = append(out, FormatInfo{Format: FormatPNG, Description: "PNG with annotated elements", Available: true})
	return out
}

func precise(geo *model.GeoreferenceResult) bool {
	return geo != nil && geo.Success && geo.Method == model.MethodHomography && geo.TransformMatrix != nil
}

// Input is everything an export may draw from.
type Input struct {
	ID           string
	Image        image.Image
	Analysis     *model.AnalysisResult
	Georeference *model.GeoreferenceResult
}

// Result names the written files. Path is the primary file.
type Result struct {
	Format    Format   `json:"format"`
	Path      string   `json:"path"`
	Files     []string `json:"files"`
	SizeBytes int64    `json:"size_bytes"`
}

// Exporter writes exports under dir/<id>/.
type Exporter struct {
	dir string
	now func() time.Time
}

// NewExporter creates an exporter rooted at dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

// Export writes in in the requested format. includeMetadata adds the
// processing summary to GeoJSON output.
func (x *Exporter) Export(in Input, format Format, includeMetadata bool) (*Result, error) {
	outDir := filepath.Join(x.dir, in.ID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, &ExportError{Format: format, Err: err}
	}
	base := filepath.Join(outDir, fmt.Sprintf("%s_%s", in.ID, x.now().Format("20060102_150405")))

	var (
		files []string
		err   error
	)
	switch format {
	case FormatGeoJSON:
		files, err = x.geojson(in, base+".geojson", includeMetadata)
	case FormatPNG:
		files, err = x.png(in, base+".png")
	case FormatWorld:
		files, err = x.world(in, base)
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, &ExportError{Format: format, Err: err}
	}

	var size int64
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			size += info.Size()
		}
	}
	return &Result{Format: format, Path: files[0], Files: files, SizeBytes: size}, nil
}

func (x *Exporter) geojson(in Input, path string, includeMetadata bool) ([]string, error) {
	if in.Analysis == nil || len(in.Analysis.Elements) == 0 {
		return nil, fmt.Errorf("no detected elements")
	}
	fc := NewFeatureCollection(in.Analysis.Elements)
	if includeMetadata {
		fc.Metadata = NewMetadata(in.Analysis, in.Georeference)
	}
	if err := WriteGeoJSON(path, fc); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (x *Exporter) png(in Input, path string) ([]string, error) {
	if in.Image == nil {
		return nil, fmt.Errorf("no image")
	}
	var elements []model.MapElement
	if in.Analysis != nil {
		elements = in.Analysis.Elements
	}
	if err := WriteAnnotatedPNG(path, in.Image, elements); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (x *Exporter) world(in Input, base string) ([]string, error) {
	if !precise(in.Georeference) {
		return nil, fmt.Errorf("map was not georeferenced from control points")
	}
	if in.Image == nil {
		return nil, fmt.Errorf("no image")
	}
	return WriteWorldRaster(base, in.Image, in.Georeference)
}
