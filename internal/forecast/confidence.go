package forecast

import "math"

// DefaultConfidenceLevel is the two-sided level used when none is configured.
const DefaultConfidenceLevel = 0.95

// ZScore returns the two-sided standard normal quantile for a confidence level in (0, 1).
func ZScore(level float64) (float64, error) {
	if err := checkLevel(level); err != nil {
		return 0, err
	}
	return math.Sqrt2 * math.Erfinv(level), nil
}

func checkLevel(level float64) error {
	switch {
	case math.IsNaN(level):
		return configErrorf("confidence level", "is NaN")
	case level < 0:
		return configErrorf("confidence level", "must not be negative, got %v", level)
	case level == 0 || level >= 1:
		return configErrorf("confidence level", "must lie strictly between 0 and 1, got %v", level)
	}
	return nil
}

// ConfidenceBand returns a copy of path with bounds expected ± |expected|·z·volatility·√month.
// The lower bound of a non-negative expectation is clipped at zero.
func ConfidenceBand(path ProjectionPath, volatility, level float64) (ProjectionPath, error) {
	z, err := ZScore(level)
	if err != nil {
		return ProjectionPath{}, err
	}
	if math.IsNaN(volatility) || math.IsInf(volatility, 0) || volatility < 0 {
		return ProjectionPath{}, configErrorf("volatility", "must be finite and non-negative, got %v", volatility)
	}

	out := ProjectionPath{
		Points:            make([]ProjectionPoint, len(path.Points)),
		BlendedReturn:     path.BlendedReturn,
		BlendedVolatility: path.BlendedVolatility,
		Confidence:        level,
	}
	for i, pt := range path.Points {
		month := pt.Month
		if month < 1 {
			month = i + 1
		}
		margin := math.Abs(pt.Expected) * z * volatility * math.Sqrt(float64(month))
		lower := pt.Expected - margin
		if lower < 0 && pt.Expected >= 0 {
			lower = 0
		}
		pt.Lower = lower
		pt.Upper = pt.Expected + margin
		out.Points[i] = pt
	}
	return out, nil
}
