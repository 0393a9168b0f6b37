package admin

import (
	"fmt"
	"math"
)

type Rules struct {
	MinWidth       int
	MinHeight      int
	TargetRatio    float64
	RatioTolerance float64
	// Label is the recommended format shown to the admin.
	Label string
}

var (
	ProductVisualRules = Rules{
		MinWidth:       800,
		MinHeight:      800,
		TargetRatio:    1,
		RatioTolerance: 0.08,
		Label:          "1080×1080 (ratio 1:1)",
	}

	BannerRules = Rules{
		MinWidth:       1200,
		MinHeight:      350,
		TargetRatio:    3.2,
		RatioTolerance: 0.22,
		Label:          "1600×500 (ratio ~3.2:1)",
	}
)

// Check is the outcome of validating one image.
type Check struct {
	OK      bool
	Width   int
	Height  int
	Message string
}

// CheckDimensions applies r to an image of w×h pixels. Resolution is reported
// before ratio.
func CheckDimensions(w, h int, r Rules) Check {
	if w <= 0 || h <= 0 {
		return Check{Width: w, Height: h, Message: "Image invalide"}
	}

	ratio := float64(w) / float64(h)
	minOK := w >= r.MinWidth && h >= r.MinHeight
	ratioOK := math.Abs(ratio-r.TargetRatio) <= r.RatioTolerance
	if minOK && ratioOK {
		return Check{OK: true, Width: w, Height: h}
	}

	reason := fmt.Sprintf("ratio non recommandé (%.2f:1)", ratio)
	if !minOK {
		reason = fmt.Sprintf("résolution trop faible (%d×%d)", w, h)
	}
	return Check{
		Width:   w,
		Height:  h,
		Message: reason + ". Recommandé: " + r.Label,
	}
}
