package detection

import (
	"github.com/ironsheep/map-georef/internal/config"
	"github.com/ironsheep/map-georef/internal/imaging"
)

// Params holds every detector threshold.
type Params = config.DetectionConfig

// DefaultParams returns the built-in thresholds.
func DefaultParams() Params {
	return config.Default().Detection
}

// PreprocessParams extracts the preprocessing subset of p.
func PreprocessParams(p Params) imaging.PreprocessParams {
	return imaging.PreprocessParams{
		BilateralDiameter: p.BilateralDiameter,
		BilateralSigma:    p.BilateralSigma,
		CLAHEClipLimit:    p.CLAHEClipLimit,
		CLAHETileGrid:     p.CLAHETileGrid,
	}
}

// HSVRange converts a configured range to the imaging representation.
func HSVRange(r config.HSVRange) imaging.HSVRange {
	return imaging.HSVRange{
		Lower: imaging.HSVColor{H: r.Lower[0], S: r.Lower[1], V: r.Lower[2]},
		Upper: imaging.HSVColor{H: r.Upper[0], S: r.Upper[1], V: r.Upper[2]},
	}
}
