package loadtest

import (
	"fmt"
	"math"

	"github.com/okian/aimtune/internal/domain/model"
)

// tolerance absorbs float rounding at the slider bounds.
const tolerance = 1e-9

// verifyResult checks a result against the profile it was computed for.
func verifyResult(game model.GameProfile, req model.CalculationRequest, res model.CalculationResult) []string {
	var out []string
	if res.ID == "" {
		out = append(out, "result has no id")
	}
	if res.GameID != game.GameID {
		out = append(out, fmt.Sprintf("result %s: game %q, want %q", res.ID, res.GameID, game.GameID))
	}
	if res.Confidence < 0 || res.Confidence > 1 || math.IsNaN(res.Confidence) {
		out = append(out, fmt.Sprintf("result %s: confidence %v outside [0,1]", res.ID, res.Confidence))
	}
	if _, ok := res.PerAxisSensitivity[model.AxisGeneral]; !ok {
		out = append(out, fmt.Sprintf("result %s: general axis missing", res.ID))
	}

	for axis, v := range res.PerAxisSensitivity {
		if axis.IsGyro() && !req.Device.HasGyro {
			out = append(out, fmt.Sprintf("result %s: gyro axis %s without a gyro", res.ID, axis))
		}
		b, ok := game.AxisBounds[axis]
		if !ok {
			out = append(out, fmt.Sprintf("result %s: axis %s not defined by %s", res.ID, axis, game.GameID))
			continue
		}
		if v < b.Min-tolerance || v > b.Max+tolerance {
			out = append(out, fmt.Sprintf("result %s: %s=%v outside [%v,%v]", res.ID, axis, v, b.Min, b.Max))
		}
	}
	return out
}
