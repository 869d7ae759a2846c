package score

import (
	"fmt"
	"strconv"
	"strings"
)

// HardSoftScore is the aggregated result of all constraints over an assignment.
// Init counts (negatively) the planning variables left unassigned, Hard and Soft are the
// summed constraint impacts. Ordering is lexicographic: Init, then Hard, then Soft.
type HardSoftScore struct {
	Init int64
	Hard int64
	Soft int64
}

var (
	Zero    = HardSoftScore{}
	OneHard = HardSoftScore{Hard: 1}
	OneSoft = HardSoftScore{Soft: 1}
)

func Of(hard, soft int64) HardSoftScore {
	return HardSoftScore{Hard: hard, Soft: soft}
}

func (s HardSoftScore) Add(other HardSoftScore) HardSoftScore {
	return HardSoftScore{Init: s.Init + other.Init, Hard: s.Hard + other.Hard, Soft: s.Soft + other.Soft}
}

func (s HardSoftScore) Sub(other HardSoftScore) HardSoftScore {
	return HardSoftScore{Init: s.Init - other.Init, Hard: s.Hard - other.Hard, Soft: s.Soft - other.Soft}
}

func (s HardSoftScore) Negate() HardSoftScore {
	return HardSoftScore{Init: -s.Init, Hard: -s.Hard, Soft: -s.Soft}
}

func (s HardSoftScore) Multiply(factor int64) HardSoftScore {
	return HardSoftScore{Init: s.Init * factor, Hard: s.Hard * factor, Soft: s.Soft * factor}
}

// Compare returns -1, 0 or 1 when s is respectively worse than, equal to or better than other
func (s HardSoftScore) Compare(other HardSoftScore) int {
	switch {
	case s.Init != other.Init:
		return compareLevel(s.Init, other.Init)
	case s.Hard != other.Hard:
		return compareLevel(s.Hard, other.Hard)
	default:
		return compareLevel(s.Soft, other.Soft)
	}
}

func (s HardSoftScore) BetterThan(other HardSoftScore) bool {
	return s.Compare(other) > 0
}

func (s HardSoftScore) NotWorseThan(other HardSoftScore) bool {
	return s.Compare(other) >= 0
}

// IsFeasible reports whether every planning variable is assigned and no hard constraint is broken
func (s HardSoftScore) IsFeasible() bool {
	return s.Init == 0 && s.Hard >= 0
}

func (s HardSoftScore) IsInitialized() bool {
	return s.Init == 0
}

func (s HardSoftScore) String() string {
	if s.Init != 0 {
		return fmt.Sprintf("%dinit/%dhard/%dsoft", s.Init, s.Hard, s.Soft)
	}
	return fmt.Sprintf("%dhard/%dsoft", s.Hard, s.Soft)
}

// Parse reads a score in the format produced by String (e.g. "-2init/0hard/-5soft" or "0hard/3soft")
func Parse(text string) (HardSoftScore, error) {
	parts := strings.Split(strings.TrimSpace(text), "/")
	if len(parts) != 2 && len(parts) != 3 {
		return Zero, fmt.Errorf("invalid score %q: expected \"[<n>init/]<n>hard/<n>soft\"", text)
	}

	var parsed HardSoftScore
	suffixes := []string{"hard", "soft"}
	targets := []*int64{&parsed.Hard, &parsed.Soft}
	if len(parts) == 3 {
		suffixes = append([]string{"init"}, suffixes...)
		targets = append([]*int64{&parsed.Init}, targets...)
	}

	for i, part := range parts {
		number, ok := strings.CutSuffix(part, suffixes[i])
		if !ok {
			return Zero, fmt.Errorf("invalid score %q: level %q lacks suffix %q", text, part, suffixes[i])
		}
		value, err := strconv.ParseInt(number, 10, 64)
		if err != nil {
			return Zero, fmt.Errorf("invalid score %q: %w", text, err)
		}
		*targets[i] = value
	}
	return parsed, nil
}

func compareLevel(a, b int64) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
