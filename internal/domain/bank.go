package domain

const (
	DefaultBankID      = "longevity"
	DefaultBankVersion = "v1"
)

// DefaultBank returns the built-in eight question longevity bank.
func DefaultBank() Bank {
	return Bank{
		ID:      DefaultBankID,
		Version: DefaultBankVersion,
		Questions: []Question{
			{ID: 1, Text: "How many servings of vegetables do you eat daily?", Emoji: "🥗", Options: []Option{
				{Text: "0 servings", Points: 0},
				{Text: "1-3 servings", Points: 6},
				{Text: "4-6 servings", Points: 10},
				{Text: "7+ servings", Points: 13},
			}},
			{ID: 2, Text: "Hours of sleep per night?", Emoji: "💤", Options: []Option{
				{Text: "< 5 hours", Points: 0},
				{Text: "5-6 hours", Points: 4},
				{Text: "7-8 hours", Points: 12},
				{Text: "9+ hours", Points: 8},
			}},
			{ID: 3, Text: "Exercise frequency?", Emoji: "🏃", Options: []Option{
				{Text: "Never", Points: 0},
				{Text: "1-2x/week", Points: 6},
				{Text: "3-4x/week", Points: 10},
				{Text: "Daily", Points: 13},
			}},
			{ID: 4, Text: "Do you follow Mediterranean diet principles?", Emoji: "🍇", Options: []Option{
				{Text: "Never", Points: 0},
				{Text: "Sometimes", Points: 6},
				{Text: "Often", Points: 10},
				{Text: "Always", Points: 13},
			}},
			{ID: 5, Text: "Stress management practice?", Emoji: "🧘", Options: []Option{
				{Text: "None", Points: 0},
				{Text: "Occasional", Points: 4},
				{Text: "Regular", Points: 10},
				{Text: "Daily", Points: 13},
			}},
			{ID: 6, Text: "Social connections?", Emoji: "👥", Options: []Option{
				{Text: "Isolated", Points: 0},
				{Text: "Few friends", Points: 4},
				{Text: "Active social life", Points: 10},
				{Text: "Strong community", Points: 13},
			}},
			{ID: 7, Text: "Fasting habits?", Emoji: "⏰", Options: []Option{
				{Text: "Never", Points: 0},
				{Text: "Occasional", Points: 6},
				{Text: "Regular IF", Points: 10},
				{Text: "Extended fasts", Points: 12},
			}},
			{ID: 8, Text: "Supplement routine?", Emoji: "💊", Options: []Option{
				{Text: "None", Points: 2},
				{Text: "Basic vitamins", Points: 6},
				{Text: "Targeted stack", Points: 10},
				{Text: "Biohacker protocol", Points: 12},
			}},
		},
	}
}
