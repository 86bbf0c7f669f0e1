package funnel

// Classification is the lead tier derived from the total score.
type Classification string

const (
	ClassHot       Classification = "hot"
	ClassWarm      Classification = "warm"
	ClassPotential Classification = "potential"
	ClassNurture   Classification = "nurture"
)

// Classify maps a total score onto a tier. Boundaries are inclusive:
// a score equal to a threshold lands in that tier.
func Classify(score int, s Scoring) Classification {
	switch {
	case score >= s.Hot:
		return ClassHot
	case score >= s.Warm:
		return ClassWarm
	case score >= s.Potential:
		return ClassPotential
	default:
		return ClassNurture
	}
}
