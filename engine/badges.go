package engine

// BadgeDefinition mirrors an achievement rule table for display: the same
// thresholds, projected as per-dimension progress instead of a boolean.
type BadgeDefinition struct {
	Type         string       `json:"type"`
	Requirements map[Stat]int `json:"requirements"`
}

// BadgeProgress is a 0-100% completion projection. Percentage reaches 100
// exactly when every per-dimension requirement is met, i.e. when the
// achievement evaluator would unlock the corresponding definition.
type BadgeProgress struct {
	Type       string  `json:"type"`
	Current    int     `json:"current"`
	Max        int     `json:"max"`
	Percentage float64 `json:"percentage"`
}

// BadgeCatalog returns the badge rule table. Badges are the
// presentation-facing analogue of the achievement catalog.
func BadgeCatalog() []BadgeDefinition {
	defs := make([]BadgeDefinition, 0, len(achievementCatalog))
	for _, a := range achievementCatalog {
		defs = append(defs, BadgeDefinition{Type: a.Type, Requirements: a.Required})
	}
	return defs
}

// Progress sums capped per-dimension progress against summed thresholds.
// Read-only: it never mutates state.
func Progress(def BadgeDefinition, stats StatsSnapshot) BadgeProgress {
	p := BadgeProgress{Type: def.Type}
	for stat, threshold := range def.Requirements {
		value, ok := stats.Value(stat)
		if !ok {
			value = 0
		}
		if value > threshold {
			value = threshold
		}
		p.Current += value
		p.Max += threshold
	}
	if p.Max > 0 {
		p.Percentage = float64(p.Current) / float64(p.Max) * 100
	}
	return p
}
