package domain

import (
	"fmt"
	"strings"
	"time"
)

type ClaimType int

const (
	ClaimOneLine   ClaimType = 1
	ClaimTwoLines  ClaimType = 2
	ClaimFullBoard ClaimType = 3
)

func (c ClaimType) Valid() bool {
	return c >= ClaimOneLine && c <= ClaimFullBoard
}

func (c ClaimType) String() string {
	switch c {
	case ClaimOneLine:
		return "one-line"
	case ClaimTwoLines:
		return "two-lines"
	case ClaimFullBoard:
		return "full-board"
	}
	return fmt.Sprintf("claim-type(%d)", int(c))
}

// ParseClaimType accepts both the numeric codes (1, 2, 3) and the names.
func ParseClaimType(s string) (ClaimType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "one-line", "oneline":
		return ClaimOneLine, nil
	case "2", "two-lines", "twolines":
		return ClaimTwoLines, nil
	case "3", "full-board", "fullboard":
		return ClaimFullBoard, nil
	}
	return 0, fmt.Errorf("unknown claim type %q", s)
}

type Claim struct {
	ID           int64
	ClaimantName string
	Type         ClaimType
	RecordedAt   time.Time
}
