// Package scoring computes moderated quality totals and per-user
// personalization scores. Everything in this package is a pure function of
// its inputs; stores and handlers live elsewhere.
package scoring

import "github.com/okian/feedrank/internal/domain/model"

// Bounds for the moderated quality score.
const (
	// CategoryMax caps each sub-score category.
	CategoryMax = 10
	// BoostClamp bounds the aggregated curator influence per category,
	// regardless of how many curators boosted the event.
	BoostClamp = 6
	// TotalMax is the maximum persisted total (three categories at CategoryMax).
	TotalMax = 3 * CategoryMax
)

// Deltas holds the aggregated curator adjustment per category, each clamped
// to [-BoostClamp, +BoostClamp].
type Deltas struct {
	Rarity    int
	Unique    int
	Magnitude int
}

// FinalScores is the deterministic moderated score for an event.
type FinalScores struct {
	Rarity    int
	Unique    int
	Magnitude int
	Total     int
}

// AggregateCuratorBoosts sums each category's deltas across all curator
// entries and clamps the sums to [-BoostClamp, +BoostClamp].
func AggregateCuratorBoosts(boosts []model.CuratorBoost) Deltas {
	var d Deltas
	for i := range boosts {
		d.Rarity += deref(boosts[i].Rarity)
		d.Unique += deref(boosts[i].Unique)
		d.Magnitude += deref(boosts[i].Magnitude)
	}
	d.Rarity = clamp(d.Rarity, -BoostClamp, BoostClamp)
	d.Unique = clamp(d.Unique, -BoostClamp, BoostClamp)
	d.Magnitude = clamp(d.Magnitude, -BoostClamp, BoostClamp)
	return d
}

// CalculateFinalScores combines automated sub-scores, aggregated curator
// boosts, and the admin override into the final per-category scores and
// total. An admin-override value replaces its category outright; otherwise
// the category is clamp(ai+boost, 0, CategoryMax). A nil AI sub-score
// contributes 0. Total is always in [0, TotalMax].
func CalculateFinalScores(ai model.SubScores, override model.ScoreOverride) FinalScores {
	boosts := AggregateCuratorBoosts(override.Boosts)

	f := FinalScores{
		Rarity:    finalCategory(ai.Rarity, boosts.Rarity, adminValue(override.Admin, func(a *model.AdminOverride) *int { return a.Rarity })),
		Unique:    finalCategory(ai.Unique, boosts.Unique, adminValue(override.Admin, func(a *model.AdminOverride) *int { return a.Unique })),
		Magnitude: finalCategory(ai.Magnitude, boosts.Magnitude, adminValue(override.Admin, func(a *model.AdminOverride) *int { return a.Magnitude })),
	}
	f.Total = f.Rarity + f.Unique + f.Magnitude
	return f
}

// finalCategory resolves one category: admin override verbatim when
// present, otherwise AI plus boost clamped into [0, CategoryMax].
func finalCategory(ai *int, boost int, admin *int) int {
	if admin != nil {
		return *admin
	}
	return clamp(deref(ai)+boost, 0, CategoryMax)
}

func adminValue(a *model.AdminOverride, pick func(*model.AdminOverride) *int) *int {
	if a == nil {
		return nil
	}
	return pick(a)
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
