package segment

import (
	"math"
)

// Params is a fully-resolved set of segmentation tuning values. Every field
// is populated either from the caller's map or from its documented default.
type Params struct {
	PointsPerSide              int     `json:"points_per_side"`
	PredIoUThresh              float64 `json:"pred_iou_thresh"`
	StabilityScoreThresh       float64 `json:"stability_score_thresh"`
	CropNLayers                int     `json:"crop_n_layers"`
	CropNPointsDownscaleFactor int     `json:"crop_n_points_downscale_factor"`
	MinMaskRegionArea          int     `json:"min_mask_region_area"`
	BoxNMSThresh               float64 `json:"box_nms_thresh"`
}

// DefaultParams returns the documented defaults for every tuning value.
func DefaultParams() Params {
	return Params{
		PointsPerSide:              64,
		PredIoUThresh:              0.8,
		StabilityScoreThresh:       0.85,
		CropNLayers:                0,
		CropNPointsDownscaleFactor: 2,
		MinMaskRegionArea:          0,
		BoxNMSThresh:               0.7,
	}
}

// paramSpec is one row of the validation table: the accepted range for a
// recognized key and where its value lands in Params.
type paramSpec struct {
	name     string
	integer  bool
	min, max float64
	assign   func(*Params, float64)
}

// maxIntParam caps every integer-typed parameter. Values above it would
// still be integral float64s but convert to garbage ints; anything past this
// bound is meaningless to the model anyway.
const maxIntParam = math.MaxInt32

// paramTable drives resolution. Order matters: validation is fail-fast and
// keys are checked in this order.
var paramTable = []paramSpec{
	{"points_per_side", true, 1, maxIntParam, func(p *Params, v float64) { p.PointsPerSide = int(v) }},
	{"pred_iou_thresh", false, 0, 1, func(p *Params, v float64) { p.PredIoUThresh = v }},
	{"stability_score_thresh", false, 0, 1, func(p *Params, v float64) { p.StabilityScoreThresh = v }},
	{"crop_n_layers", true, 0, maxIntParam, func(p *Params, v float64) { p.CropNLayers = int(v) }},
	{"crop_n_points_downscale_factor", true, 1, maxIntParam, func(p *Params, v float64) { p.CropNPointsDownscaleFactor = int(v) }},
	{"min_mask_region_area", true, 0, maxIntParam, func(p *Params, v float64) { p.MinMaskRegionArea = int(v) }},
	{"box_nms_thresh", false, 0, 1, func(p *Params, v float64) { p.BoxNMSThresh = v }},
}

// ResolveParams merges a caller-supplied parameter map with the documented
// defaults. Unrecognized keys are ignored. A recognized key with a wrong type
// or out-of-range value fails immediately with an invalid_parameter error;
// nothing from a bad map is applied.
func ResolveParams(raw map[string]interface{}) (Params, error) {
	p := DefaultParams()
	if len(raw) == 0 {
		return p, nil
	}

	for _, spec := range paramTable {
		v, ok := raw[spec.name]
		if !ok {
			continue
		}

		f, ok := asNumber(v)
		if !ok {
			return Params{}, Errorf(KindInvalidParameter, "%s: expected a number, got %T", spec.name, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Params{}, Errorf(KindInvalidParameter, "%s: value must be finite", spec.name)
		}
		if spec.integer && f != math.Trunc(f) {
			return Params{}, Errorf(KindInvalidParameter, "%s: expected an integer, got %v", spec.name, f)
		}
		if f < spec.min || f > spec.max {
			if spec.integer {
				return Params{}, Errorf(KindInvalidParameter, "%s: %v outside range [%d, %d]", spec.name, f, int64(spec.min), int64(spec.max))
			}
			return Params{}, Errorf(KindInvalidParameter, "%s: %v outside range [%v, %v]", spec.name, f, spec.min, spec.max)
		}

		spec.assign(&p, f)
	}

	return p, nil
}

// asNumber accepts the numeric representations a decoded JSON map or direct
// Go caller can produce. Everything else is a type error.
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
