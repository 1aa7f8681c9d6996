package domain

import "time"

const (
	MinValue = 1
	MaxValue = 90
	PoolSize = MaxValue - MinValue + 1
)

// DrawnNumber is one entry of the append-only draw log.
type DrawnNumber struct {
	ID      int64
	Value   int
	DrawnAt time.Time
}

func ValidValue(v int) bool {
	return v >= MinValue && v <= MaxValue
}

// Values extracts the drawn values, preserving order.
func Values(numbers []DrawnNumber) []int {
	out := make([]int, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, n.Value)
	}
	return out
}
