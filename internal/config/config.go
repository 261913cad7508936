// Package config loads pipeline configuration from YAML.
//
// Every field has a default taken from the reference pipeline; a config file
// only needs to name what it overrides. The fallback extent is the one value
// that must describe a real region, and Validate rejects a degenerate one.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "MAPGEO_CONFIG"

// EnvLogLevel enables debug logging when set to "debug".
const EnvLogLevel = "MAPGEO_LOG_LEVEL"

// Config is the root configuration document.
type Config struct {
	OCR        OCRConfig        `yaml:"ocr"`
	CRS        CRSConfig        `yaml:"crs"`
	Geocoding  GeocodingConfig  `yaml:"geocoding"`
	Fallback   FallbackConfig   `yaml:"fallback"`
	Detection  DetectionConfig  `yaml:"detection"`
	Homography HomographyConfig `yaml:"homography"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Limits     LimitsConfig     `yaml:"limits"`
	PDF        PDFConfig        `yaml:"pdf"`
	Server     ServerConfig     `yaml:"server"`
}

type OCRConfig struct {
	Language      string  `yaml:"language"`
	MinConfidence float64 `yaml:"min_confidence"` // 0-100 engine scale
}

type CRSConfig struct {
	Working       string `yaml:"working"`
	DefaultTarget string `yaml:"default_target"`
}

type GeocodingConfig struct {
	BaseURL           string        `yaml:"base_url"`
	CountryCodes      string        `yaml:"country_codes"`
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	MinTextConfidence float64       `yaml:"min_text_confidence"`
	MinTextLength     int           `yaml:"min_text_length"`
	Gazetteer         []string      `yaml:"gazetteer"`
}

type FallbackConfig struct {
	Extent [4]float64 `yaml:"extent"`
	CRS    string     `yaml:"crs"`
}

// HSVRange bounds a colour class in OpenCV HSV units (H 0-180, S and V 0-255).
type HSVRange struct {
	Lower [3]float64 `yaml:"lower"`
	Upper [3]float64 `yaml:"upper"`
}

type HoughConfig struct {
	Threshold     int     `yaml:"threshold"`
	MinLineLength float64 `yaml:"min_line_length"`
	MaxLineGap    float64 `yaml:"max_line_gap"`
}

type DetectionConfig struct {
	BilateralDiameter   int         `yaml:"bilateral_diameter"`
	BilateralSigma      float64     `yaml:"bilateral_sigma"`
	CLAHEClipLimit      float64     `yaml:"clahe_clip_limit"`
	CLAHETileGrid       int         `yaml:"clahe_tile_grid"`
	CannyLow            float64     `yaml:"canny_low"`
	CannyHigh           float64     `yaml:"canny_high"`
	ScaleHough          HoughConfig `yaml:"scale_hough"`
	ScaleAngleTolerance float64     `yaml:"scale_angle_tolerance"`
	ScaleSaturationPx   float64     `yaml:"scale_saturation_px"`
	LegendSaturation    float64     `yaml:"legend_saturation"`
	RoadHough           HoughConfig `yaml:"road_hough"`
	RoadConfidence      float64     `yaml:"road_confidence"`
	Water               HSVRange    `yaml:"water"`
	WaterMinArea        float64     `yaml:"water_min_area"`
	WaterConfidence     float64     `yaml:"water_confidence"`
	Green               HSVRange    `yaml:"green"`
	GreenMinArea        float64     `yaml:"green_min_area"`
	GreenConfidence     float64     `yaml:"green_confidence"`
	BuildingMinArea     float64     `yaml:"building_min_area"`
	BuildingMaxArea     float64     `yaml:"building_max_area"`
	BuildingEpsilon     float64     `yaml:"building_epsilon"`
	BuildingConfidence  float64     `yaml:"building_confidence"`
}

type HomographyConfig struct {
	ReprojectionThreshold float64 `yaml:"reprojection_threshold"`
	MinPoints             int     `yaml:"min_points"`
	MaxIterations         int     `yaml:"max_iterations"`
	Seed                  int64   `yaml:"seed"`
}

type AnalysisConfig struct {
	Workers int `yaml:"workers"`
}

type LimitsConfig struct {
	MaxFileSizeMB     int      `yaml:"max_file_size_mb"`
	MaxImageDimension int      `yaml:"max_image_dimension"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

type PDFConfig struct {
	DPI float64 `yaml:"dpi"`
}

type ServerConfig struct {
	Address   string `yaml:"address"`
	UploadDir string `yaml:"upload_dir"`
	ExportDir string `yaml:"export_dir"`
	BodyLimit string `yaml:"body_limit"` // echo size notation, e.g. "80M"
}

// DefaultGazetteer lists the place-name keywords of the Olomouc region and
// common Czech street/landmark words.
var DefaultGazetteer = []string{
	"olomouc", "olomouci", "olomouce",
	"přerov", "prostějov", "šumperk",
	"ulice", "náměstí", "třída", "nádraží",
	"řeka", "most", "kostel",
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		OCR: OCRConfig{
			Language:      "ces",
			MinConfidence: 30,
		},
		CRS: CRSConfig{
			Working:       "EPSG:5514",
			DefaultTarget: "EPSG:4326",
		},
		Geocoding: GeocodingConfig{
			BaseURL:           "https://nominatim.openstreetmap.org",
			CountryCodes:      "cz",
			Timeout:           10 * time.Second,
			UserAgent:         "map-georef/1.0",
			RequestsPerSecond: 1,
			MinTextConfidence: 0.7,
			MinTextLength:     3,
			Gazetteer:         append([]string(nil), DefaultGazetteer...),
		},
		Fallback: FallbackConfig{
			Extent: [4]float64{17.2, 49.5, 17.3, 49.7},
			CRS:    "EPSG:4326",
		},
		Detection: DetectionConfig{
			BilateralDiameter:   9,
			BilateralSigma:      75,
			CLAHEClipLimit:      2.0,
			CLAHETileGrid:       8,
			CannyLow:            50,
			CannyHigh:           150,
			ScaleHough:          HoughConfig{Threshold: 100, MinLineLength: 50, MaxLineGap: 10},
			ScaleAngleTolerance: 15,
			ScaleSaturationPx:   200,
			LegendSaturation:    1000,
			RoadHough:           HoughConfig{Threshold: 50, MinLineLength: 30, MaxLineGap: 10},
			RoadConfidence:      0.7,
			Water:               HSVRange{Lower: [3]float64{100, 50, 50}, Upper: [3]float64{130, 255, 255}},
			WaterMinArea:        100,
			WaterConfidence:     0.8,
			Green:               HSVRange{Lower: [3]float64{40, 50, 50}, Upper: [3]float64{80, 255, 255}},
			GreenMinArea:        200,
			GreenConfidence:     0.7,
			BuildingMinArea:     500,
			BuildingMaxArea:     10000,
			BuildingEpsilon:     0.02,
			BuildingConfidence:  0.6,
		},
		Homography: HomographyConfig{
			ReprojectionThreshold: 5.0,
			MinPoints:             4,
			MaxIterations:         2000,
			Seed:                  1,
		},
		Analysis: AnalysisConfig{
			Workers: 4,
		},
		Limits: LimitsConfig{
			MaxFileSizeMB:     50,
			MaxImageDimension: 4096,
			AllowedExtensions: []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp", ".gif", ".pdf"},
		},
		PDF: PDFConfig{
			DPI: 150,
		},
		Server: ServerConfig{
			Address:   ":8080",
			UploadDir: "./data/uploads",
			ExportDir: "./data/exports",
			BodyLimit: "80M",
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the file named by MAPGEO_CONFIG, or the defaults when the
// variable is unset.
func FromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return Load(path)
}

// Debug reports whether debug logging was requested.
func Debug() bool {
	return os.Getenv(EnvLogLevel) == "debug"
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	var errs []error

	e := c.Fallback.Extent
	if !(e[2] > e[0] && e[3] > e[1]) {
		errs = append(errs, fmt.Errorf("fallback.extent must be [min_x, min_y, max_x, max_y] with positive size, got %v", e))
	}
	if c.Fallback.CRS == "" {
		errs = append(errs, errors.New("fallback.crs is required"))
	}
	if c.CRS.Working == "" {
		errs = append(errs, errors.New("crs.working is required"))
	}
	if c.Homography.MinPoints < 4 {
		errs = append(errs, fmt.Errorf("homography.min_points must be at least 4, got %d", c.Homography.MinPoints))
	}
	if c.Homography.ReprojectionThreshold <= 0 {
		errs = append(errs, errors.New("homography.reprojection_threshold must be positive"))
	}
	if c.Geocoding.Timeout <= 0 {
		errs = append(errs, errors.New("geocoding.timeout must be positive"))
	}
	if c.Analysis.Workers < 1 {
		errs = append(errs, errors.New("analysis.workers must be at least 1"))
	}

	return errors.Join(errs...)
}
