package app

import (
	"encoding/base64"
	"encoding/json"

	"longevity-frame/internal/domain"
)

// StateCodec turns a QuizState into a URL-safe token and back. The token is
// plain base64 JSON with no integrity protection: it is untrusted input.
type StateCodec struct{}

// DecodedState is the result of decoding a token. Fallback is set when the
// token could not be used and State holds the empty default instead.
type DecodedState struct {
	State    domain.QuizState
	Fallback bool
}

// wireState mirrors domain.QuizState with pointers so missing fields are detectable.
type wireState struct {
	CurrentQuestion *int            `json:"currentQuestion"`
	Answers         []domain.Answer `json:"answers"`
	Score           *int            `json:"score,omitempty"`
	Tier            domain.Tier     `json:"tier,omitempty"`
	Badge           string          `json:"badge,omitempty"`
}

// EmptyState is the state a fresh or reset quiz starts from.
func EmptyState() domain.QuizState {
	return domain.QuizState{CurrentQuestion: 0, Answers: []domain.Answer{}}
}

// Encode serializes state. Answers are always emitted, never null.
func (StateCodec) Encode(state domain.QuizState) string {
	answers := state.Answers
	if answers == nil {
		answers = []domain.Answer{}
	}
	current := state.CurrentQuestion
	// wireState holds only ints, strings and a slice of int pairs, so Marshal cannot fail.
	raw, _ := json.Marshal(wireState{
		CurrentQuestion: &current,
		Answers:         answers,
		Score:           state.Score,
		Tier:            state.Tier,
		Badge:           state.Badge,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode never fails: any malformed token yields EmptyState with Fallback set.
func (StateCodec) Decode(token string) DecodedState {
	fallback := DecodedState{State: EmptyState(), Fallback: true}
	if token == "" {
		return fallback
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fallback
	}
	var ws wireState
	if err := json.Unmarshal(raw, &ws); err != nil {
		return fallback
	}
	if ws.CurrentQuestion == nil || ws.Answers == nil || *ws.CurrentQuestion < 0 {
		return fallback
	}
	if ws.Score != nil && (*ws.Score < 0 || *ws.Score > 100) {
		return fallback
	}
	if ws.Tier != "" && !ws.Tier.Valid() {
		return fallback
	}
	return DecodedState{State: domain.QuizState{
		CurrentQuestion: *ws.CurrentQuestion,
		Answers:         ws.Answers,
		Score:           ws.Score,
		Tier:            ws.Tier,
		Badge:           ws.Badge,
	}}
}
