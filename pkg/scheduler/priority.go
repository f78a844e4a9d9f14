package scheduler

type Priority int

const (
	PriorityVeryLow Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityVeryHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityVeryLow:
		return "veryLow"
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityVeryHigh:
		return "veryHigh"
	default:
		return "unknown"
	}
}

// MaxPriority returns the highest of given priorities,
// PriorityVeryLow when called without arguments.
func MaxPriority(priorities ...Priority) Priority {
	max := PriorityVeryLow
	for _, p := range priorities {
		if p > max {
			max = p
		}
	}

	return max
}
