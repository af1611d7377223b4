package domain

// Tier is one of four ordered score classifications.
type Tier string

const (
	TierNeedsAttention    Tier = "needs-attention"
	TierGoodFoundation    Tier = "good-foundation"
	TierThriving          Tier = "thriving"
	TierLongevityChampion Tier = "longevity-champion"
)

// TierInfo holds the static presentation data of a tier.
type TierInfo struct {
	Tier       Tier
	MinScore   int
	Badge      string
	BadgeColor string
	Message    string
	Tips       []string
	insight    string
}

// tierTable is ordered by descending threshold; the first match wins.
var tierTable = []TierInfo{
	{
		Tier:       TierLongevityChampion,
		MinScore:   86,
		Badge:      "Platinum",
		BadgeColor: "#E5E4E2",
		Message:    "🏆 Longevity Champion! You're optimizing your health at the highest level.",
		Tips: []string{
			"Maintain your current routine - you're doing exceptional!",
			"Consider sharing your strategies with the community",
			"Explore advanced biohacking protocols if interested",
		},
		insight: "Scoring %d/100 puts you in the top tier of longevity optimization!",
	},
	{
		Tier:       TierThriving,
		MinScore:   66,
		Badge:      "Gold",
		BadgeColor: "#FFD700",
		Message:    "✨ Thriving! You're on an excellent path to longevity.",
		Tips: []string{
			"Focus on consistency in your current habits",
			"Add 1-2 more servings of vegetables daily",
			"Prioritize 7-8 hours of quality sleep",
		},
		insight: "With %d/100, you're thriving on your longevity journey!",
	},
	{
		Tier:       TierGoodFoundation,
		MinScore:   41,
		Badge:      "Silver",
		BadgeColor: "#C0C0C0",
		Message:    "🌱 Good Foundation! You have solid habits to build upon.",
		Tips: []string{
			"Aim for 5+ servings of vegetables daily",
			"Establish a regular exercise routine (3-4x/week)",
			"Practice stress management techniques daily",
		},
		insight: "Your %d/100 score shows a solid foundation for longevity.",
	},
	{
		Tier:       TierNeedsAttention,
		MinScore:   0,
		Badge:      "Bronze",
		BadgeColor: "#CD7F32",
		Message:    "💪 Needs Attention - but every journey starts with awareness!",
		Tips: []string{
			"Start with 2-3 servings of vegetables daily",
			"Aim for 7-8 hours of sleep consistently",
			"Begin with 2-3 exercise sessions per week",
		},
		insight: "Your %d/100 score is a great starting point for improvement!",
	},
}

// ClassifyScore returns the tier data for score. It is total over integers:
// anything below the lowest threshold falls into the last tier.
func ClassifyScore(score int) TierInfo {
	for _, info := range tierTable {
		if score >= info.MinScore {
			return info
		}
	}
	return tierTable[len(tierTable)-1]
}

// LookupTier returns the table entry for t.
func LookupTier(t Tier) (TierInfo, bool) {
	for _, info := range tierTable {
		if info.Tier == t {
			return info, true
		}
	}
	return TierInfo{}, false
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	_, ok := LookupTier(t)
	return ok
}

// InsightFormat is the share-insight template for the tier, with one %d verb for the score.
func (i TierInfo) InsightFormat() string {
	return i.insight
}
