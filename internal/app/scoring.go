package app

import (
	"fmt"
	"math"

	"longevity-frame/internal/domain"
)

// Scorer maps answers to a normalized 0-100 score for one bank. The
// normalization divisor is computed once at construction.
type Scorer struct {
	byID      map[int]domain.Question
	maxPoints int
}

func NewScorer(bank domain.Bank) *Scorer {
	s := &Scorer{
		byID: make(map[int]domain.Question, len(bank.Questions)),
	}
	for _, q := range bank.Questions {
		s.byID[q.ID] = q
		s.maxPoints += q.MaxPoints()
	}
	return s
}

// MaxPoints is the sum of every question's best option.
func (s *Scorer) MaxPoints() int {
	return s.maxPoints
}

// CalculateScore sums the points of each valid answer and scales the total to
// 0-100. Unknown questions and out-of-range option indexes contribute nothing.
func (s *Scorer) CalculateScore(answers []domain.Answer) int {
	if s.maxPoints <= 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		q, ok := s.byID[a.QuestionID]
		if !ok || a.AnswerIndex < 0 || a.AnswerIndex >= len(q.Options) {
			continue
		}
		total += q.Options[a.AnswerIndex].Points
	}
	score := int(math.Round(float64(total) / float64(s.maxPoints) * 100))
	// repeated answers for one question can push the raw total past maxPoints
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// ResultForScore classifies score into its tier, badge, message and tips.
func ResultForScore(score int) domain.ScoreResult {
	info := domain.ClassifyScore(score)
	tips := make([]string, len(info.Tips))
	copy(tips, info.Tips)
	return domain.ScoreResult{
		Score:      score,
		Tier:       info.Tier,
		Message:    info.Message,
		Tips:       tips,
		Badge:      info.Badge,
		BadgeColor: info.BadgeColor,
	}
}

// TopInsight renders the one-line share insight for a tier.
func TopInsight(tier domain.Tier, score int) (string, error) {
	info, ok := domain.LookupTier(tier)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}
	return fmt.Sprintf(info.InsightFormat(), score), nil
}
