package rewards

// Stat names tracked on every record.
const (
	StatStrength     = "strength"
	StatVitality     = "vitality"
	StatAgility      = "agility"
	StatIntelligence = "intelligence"
	StatSense        = "sense"
)

// AllStats returns the tracked stat names in display order.
func AllStats() []string {
	return []string{StatStrength, StatVitality, StatAgility, StatIntelligence, StatSense}
}

// IsStat reports whether name is a tracked stat.
func IsStat(name string) bool {
	for _, s := range AllStats() {
		if s == name {
			return true
		}
	}
	return false
}

// Stats maps attribute names to non-negative values.
type Stats map[string]int

// Clone returns an independent copy.
func (s Stats) Clone() Stats {
	if s == nil {
		return nil
	}
	c := make(Stats, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// StartingStats returns the stat block of a freshly onboarded user.
func StartingStats() Stats {
	s := make(Stats, len(AllStats()))
	for _, name := range AllStats() {
		s[name] = 1
	}
	return s
}

// PenaltyMultiplierTenths returns min(10+2*missed, 30).
func PenaltyMultiplierTenths(missed int) int {
	if missed < 0 {
		missed = 0
	}
	if missed >= (maxPenaltyTenths-10)/2 {
		return maxPenaltyTenths
	}
	return 10 + 2*missed
}

// PenaltyAmount returns the per-stat loss for missed periods:
// floor(BasePenalty * min(1+0.2*missed, 3)).
func PenaltyAmount(missed int) int {
	return BasePenalty * PenaltyMultiplierTenths(missed) / 10
}

// Penalty returns a new stat block with every attribute reduced by
// PenaltyAmount(missed), floored at 0 per attribute. stats is not modified.
func Penalty(missed int, stats Stats) Stats {
	loss := PenaltyAmount(missed)
	out := make(Stats, len(stats))
	for name, v := range stats {
		v -= loss
		if v < 0 {
			v = 0
		}
		out[name] = v
	}
	return out
}

// Diff returns before-after for every attribute that decreased.
func Diff(before, after Stats) Stats {
	d := make(Stats)
	for name, v := range before {
		if lost := v - after[name]; lost > 0 {
			d[name] = lost
		}
	}
	return d
}
