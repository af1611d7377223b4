package app

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"longevity-frame/internal/domain"
)

// MaxFrameButtons is the number of buttons a frame can carry.
const MaxFrameButtons = 4

// Fixed button labels; clients match on them.
const (
	LabelStart    = "Start Quiz"
	LabelPurchase = "Buy $TABLEDADRIAN on Clanker"
	LabelShare    = "Share My Score"
	LabelRetake   = "Retake Quiz"
)

// StepKind enumerates the frame states.
type StepKind int

const (
	StepStart StepKind = iota
	StepQuestion
	StepResults
	StepShare
)

// Step is one frame state. Question is the 1-based bank position for StepQuestion.
type Step struct {
	Kind     StepKind
	Question int
}

func StartStep() Step           { return Step{Kind: StepStart} }
func QuestionStep(pos int) Step { return Step{Kind: StepQuestion, Question: pos} }
func ResultsStep() Step         { return Step{Kind: StepResults} }
func ShareStep() Step           { return Step{Kind: StepShare} }

// ParseStep reads the wire name of a step ("start", "q3", "results",
// "share"). Anything unrecognised is the start step.
func ParseStep(raw string) Step {
	switch raw {
	case "results":
		return ResultsStep()
	case "share":
		return ShareStep()
	}
	if rest, ok := strings.CutPrefix(raw, "q"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 {
			return QuestionStep(n)
		}
	}
	return StartStep()
}

func (s Step) String() string {
	switch s.Kind {
	case StepQuestion:
		return "q" + strconv.Itoa(s.Question)
	case StepResults:
		return "results"
	case StepShare:
		return "share"
	default:
		return "start"
	}
}

// ActionKind is what a frame button does.
type ActionKind int

const (
	ActionBegin ActionKind = iota
	ActionAnswer
	ActionShare
	ActionPurchase
	ActionRestart
)

// Action is one labeled frame button.
type Action struct {
	Kind        ActionKind
	Label       string
	QuestionID  int
	AnswerIndex int
	Token       string
}

// Frame is everything needed to render one frame response.
type Frame struct {
	Step    Step
	Image   domain.ImageRef
	Actions []Action
	Token   string
	Result  *domain.ScoreResult
	Insight string
}

// Transition is the outcome of a button press: where to go next and the state to carry.
type Transition struct {
	Next       Step
	Token      string
	IsComplete bool
	Result     *domain.ScoreResult
}

// AnswerSubmission is an answer button press with the state it was issued from.
type AnswerSubmission struct {
	QuestionID  int
	AnswerIndex int
	PriorToken  string
}

// FrameController drives the quiz state machine:
// start -> q1..qN -> results -> share, with retake back to start.
type FrameController struct {
	banks  BankRepository
	bankID string
	scores *ScoreService
	codec  StateCodec
	log    *zap.Logger
}

func NewFrameController(banks BankRepository, bankID string, scores *ScoreService, log *zap.Logger) *FrameController {
	if log == nil {
		log = zap.NewNop()
	}
	return &FrameController{banks: banks, bankID: bankID, scores: scores, log: log}
}

// Codec exposes the state codec used for tokens.
func (c *FrameController) Codec() StateCodec {
	return c.codec
}

// Begin moves from start to the first question.
func (c *FrameController) Begin() Transition {
	return Transition{
		Next:  QuestionStep(1),
		Token: c.codec.Encode(domain.QuizState{CurrentQuestion: 1, Answers: []domain.Answer{}}),
	}
}

// Restart discards any state.
func (c *FrameController) Restart() Transition {
	return Transition{Next: StartStep()}
}

// SubmitAnswer appends one answer to the prior state. After the last question
// it scores the quiz and, when who is set, records the attempt. A failed
// save is logged and never blocks the transition to results.
func (c *FrameController) SubmitAnswer(ctx context.Context, sub AnswerSubmission, who *domain.Identity) (Transition, error) {
	state, ok := c.decode(sub.PriorToken)
	if !ok {
		return c.Restart(), nil
	}
	bank, err := c.banks.GetBank(ctx, c.bankID)
	if err != nil {
		return Transition{}, err
	}

	pos := state.CurrentQuestion
	if pos < 1 {
		pos = 1
	}
	answers := append(append([]domain.Answer{}, state.Answers...), domain.Answer{
		QuestionID:  sub.QuestionID,
		AnswerIndex: sub.AnswerIndex,
	})
	next := pos + 1

	if next <= bank.Len() {
		return Transition{
			Next:  QuestionStep(next),
			Token: c.codec.Encode(domain.QuizState{CurrentQuestion: next, Answers: answers}),
		}, nil
	}

	result := ResultForScore(NewScorer(bank).CalculateScore(answers))
	if who != nil && c.scores != nil {
		if err := c.scores.Record(ctx, *who, result, answers, bank.Version); err != nil {
			c.log.Warn("save score failed",
				zap.Int64("fid", who.UserID),
				zap.Int("score", result.Score),
				zap.Error(err))
		}
	}
	score := result.Score
	return Transition{
		Next: ResultsStep(),
		Token: c.codec.Encode(domain.QuizState{
			CurrentQuestion: next,
			Answers:         answers,
			Score:           &score,
			Tier:            result.Tier,
			Badge:           result.Badge,
		}),
		IsComplete: true,
		Result:     &result,
	}, nil
}

// Share carries the completed score forward into the share step without rescoring.
func (c *FrameController) Share(ctx context.Context, token string) (Transition, error) {
	state, ok := c.decode(token)
	if !ok {
		return c.Restart(), nil
	}
	result, err := c.resultFor(ctx, state)
	if err != nil {
		return Transition{}, err
	}
	score := result.Score
	return Transition{
		Next: ShareStep(),
		Token: c.codec.Encode(domain.QuizState{
			CurrentQuestion: state.CurrentQuestion,
			Answers:         []domain.Answer{},
			Score:           &score,
			Tier:            result.Tier,
			Badge:           result.Badge,
		}),
		IsComplete: true,
		Result:     &result,
	}, nil
}

// Render builds the frame for step from the carried token. Undecodable state
// renders the start frame.
func (c *FrameController) Render(ctx context.Context, step Step, token string) (Frame, error) {
	if step.Kind == StepStart {
		return c.startFrame(), nil
	}

	var state domain.QuizState
	if token == "" && step.Kind == StepQuestion {
		state = EmptyState()
	} else {
		decoded, ok := c.decode(token)
		if !ok {
			return c.startFrame(), nil
		}
		state = decoded
	}

	bank, err := c.banks.GetBank(ctx, c.bankID)
	if err != nil {
		return Frame{}, err
	}

	switch step.Kind {
	case StepQuestion:
		q, ok := bank.At(step.Question)
		if !ok {
			// Past the last question without reaching results: score what we have.
			return c.resultsFrame(bank, state), nil
		}
		return c.questionFrame(bank, step.Question, q, state), nil
	case StepResults:
		return c.resultsFrame(bank, state), nil
	case StepShare:
		return c.shareFrame(bank, state), nil
	}
	return c.startFrame(), nil
}

func (c *FrameController) decode(token string) (domain.QuizState, bool) {
	decoded := c.codec.Decode(token)
	if decoded.Fallback {
		if token != "" {
			c.log.Debug("undecodable quiz state, restarting", zap.Int("tokenLen", len(token)))
		}
		return decoded.State, false
	}
	return decoded.State, true
}

func (c *FrameController) startFrame() Frame {
	return Frame{
		Step:    StartStep(),
		Image:   domain.ImageRef{Kind: domain.ImageInitial},
		Actions: []Action{{Kind: ActionBegin, Label: LabelStart}},
	}
}

func (c *FrameController) questionFrame(bank domain.Bank, pos int, q domain.Question, state domain.QuizState) Frame {
	token := c.codec.Encode(domain.QuizState{CurrentQuestion: pos, Answers: state.Answers})
	actions := make([]Action, 0, MaxFrameButtons)
	for i, opt := range q.Options {
		if i == MaxFrameButtons {
			break
		}
		actions = append(actions, Action{
			Kind:        ActionAnswer,
			Label:       opt.Text,
			QuestionID:  q.ID,
			AnswerIndex: i,
			Token:       token,
		})
	}
	return Frame{
		Step: QuestionStep(pos),
		Image: domain.ImageRef{
			Kind:  domain.ImageQuestion,
			Num:   pos,
			Total: bank.Len(),
			Text:  q.Text,
			Emoji: q.Emoji,
		},
		Actions: actions,
		Token:   token,
	}
}

func (c *FrameController) resultsFrame(bank domain.Bank, state domain.QuizState) Frame {
	result := c.completedResult(bank, state)
	score := result.Score
	token := c.codec.Encode(domain.QuizState{
		CurrentQuestion: state.CurrentQuestion,
		Answers:         state.Answers,
		Score:           &score,
		Tier:            result.Tier,
		Badge:           result.Badge,
	})
	return Frame{
		Step:  ResultsStep(),
		Image: resultImage(domain.ImageResults, result),
		Actions: []Action{
			{Kind: ActionPurchase, Label: LabelPurchase},
			{Kind: ActionShare, Label: LabelShare, Token: token},
			{Kind: ActionRestart, Label: LabelRetake},
		},
		Token:  token,
		Result: &result,
	}
}

func (c *FrameController) shareFrame(bank domain.Bank, state domain.QuizState) Frame {
	result := c.completedResult(bank, state)
	insight, err := TopInsight(result.Tier, result.Score)
	if err != nil {
		c.log.Warn("share insight", zap.Error(err))
	}
	return Frame{
		Step:  ShareStep(),
		Image: resultImage(domain.ImageShare, result),
		Actions: []Action{
			{Kind: ActionRestart, Label: LabelRetake},
			{Kind: ActionPurchase, Label: LabelPurchase},
		},
		Token:   c.codec.Encode(state),
		Result:  &result,
		Insight: insight,
	}
}

func (c *FrameController) resultFor(ctx context.Context, state domain.QuizState) (domain.ScoreResult, error) {
	if state.Score != nil {
		return c.completedResult(domain.Bank{}, state), nil
	}
	bank, err := c.banks.GetBank(ctx, c.bankID)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return c.completedResult(bank, state), nil
}

// completedResult prefers the score carried in state and only scores the
// answers when none was carried. Tier and badge are always derived from the
// score so a tampered token cannot break the score/tier invariant.
func (c *FrameController) completedResult(bank domain.Bank, state domain.QuizState) domain.ScoreResult {
	if state.Score != nil {
		return ResultForScore(*state.Score)
	}
	return ResultForScore(NewScorer(bank).CalculateScore(state.Answers))
}

func resultImage(kind domain.ImageKind, result domain.ScoreResult) domain.ImageRef {
	return domain.ImageRef{
		Kind:  kind,
		Score: result.Score,
		Tier:  result.Tier,
		Badge: result.Badge,
	}
}
