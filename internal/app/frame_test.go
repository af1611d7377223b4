package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"longevity-frame/internal/app"
	"longevity-frame/internal/domain"
	"longevity-frame/internal/infra/memory"
)

func TestParseStep(t *testing.T) {
	cases := map[string]app.Step{
		"start":   app.StartStep(),
		"q1":      app.QuestionStep(1),
		"q8":      app.QuestionStep(8),
		"results": app.ResultsStep(),
		"share":   app.ShareStep(),
		"":        app.StartStep(),
		"q0":      app.StartStep(),
		"qx":      app.StartStep(),
		"bogus":   app.StartStep(),
	}
	for raw, want := range cases {
		if got := app.ParseStep(raw); got != want {
			t.Fatalf("ParseStep(%q) = %+v, want %+v", raw, got, want)
		}
	}
	if app.QuestionStep(3).String() != "q3" {
		t.Fatalf("expected q3, got %s", app.QuestionStep(3).String())
	}
}

func TestFrameStartButtons(t *testing.T) {
	controller, _ := newTestController(memory.NewScoreStore())
	frame, err := controller.Render(context.Background(), app.StartStep(), "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if frame.Image.Kind != domain.ImageInitial {
		t.Fatalf("expected initial image, got %s", frame.Image.Kind)
	}
	if len(frame.Actions) != 1 || frame.Actions[0].Kind != app.ActionBegin || frame.Actions[0].Label != app.LabelStart {
		t.Fatalf("unexpected start actions %+v", frame.Actions)
	}
}

func TestFrameFullQuizSavesForIdentifiedUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewScoreStore()
	controller, service := newTestController(store)
	bank := domain.DefaultBank()
	who := &domain.Identity{UserID: 7, Username: "alice"}

	tr := controller.Begin()
	if tr.Next != app.QuestionStep(1) {
		t.Fatalf("expected q1 after begin, got %s", tr.Next)
	}

	for pos, answer := range bestAnswers(bank) {
		frame, err := controller.Render(ctx, tr.Next, tr.Token)
		if err != nil {
			t.Fatalf("render q%d: %v", pos+1, err)
		}
		if frame.Step != app.QuestionStep(pos+1) {
			t.Fatalf("expected question %d, got %s", pos+1, frame.Step)
		}
		if frame.Image.Num != pos+1 || frame.Image.Total != bank.Len() {
			t.Fatalf("unexpected image ref %+v", frame.Image)
		}
		action := frame.Actions[answer.AnswerIndex]
		if action.Kind != app.ActionAnswer || action.QuestionID != answer.QuestionID {
			t.Fatalf("unexpected action %+v", action)
		}
		tr, err = controller.SubmitAnswer(ctx, app.AnswerSubmission{
			QuestionID:  action.QuestionID,
			AnswerIndex: action.AnswerIndex,
			PriorToken:  action.Token,
		}, who)
		if err != nil {
			t.Fatalf("submit q%d: %v", pos+1, err)
		}
		if pos < bank.Len()-1 && tr.IsComplete {
			t.Fatalf("quiz completed early at q%d", pos+1)
		}
	}

	if !tr.IsComplete || tr.Next != app.ResultsStep() {
		t.Fatalf("expected results transition, got %+v", tr)
	}
	if tr.Result.Score != 100 || tr.Result.Tier != domain.TierLongevityChampion {
		t.Fatalf("expected perfect score, got %+v", tr.Result)
	}

	records, _ := store.ForUser(ctx, 7)
	if len(records) != 1 || records[0].Score != 100 || records[0].BankVersion != domain.DefaultBankVersion {
		t.Fatalf("expected one saved record, got %+v", records)
	}
	if len(records[0].Answers) != bank.Len() {
		t.Fatalf("expected %d saved answers, got %d", bank.Len(), len(records[0].Answers))
	}
	if rank, _ := service.Rank(ctx, who); rank != 1 {
		t.Fatalf("expected rank 1, got %d", rank)
	}

	results, err := controller.Render(ctx, tr.Next, tr.Token)
	if err != nil {
		t.Fatalf("render results: %v", err)
	}
	labels := actionLabels(results.Actions)
	want := []string{app.LabelPurchase, app.LabelShare, app.LabelRetake}
	if !equalStrings(labels, want) {
		t.Fatalf("expected results buttons %v, got %v", want, labels)
	}
	if results.Image.Kind != domain.ImageResults || results.Image.Score != 100 || results.Image.Badge != "Platinum" {
		t.Fatalf("unexpected results image %+v", results.Image)
	}

	shared, err := controller.Share(ctx, results.Actions[1].Token)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if shared.Next != app.ShareStep() {
		t.Fatalf("expected share step, got %s", shared.Next)
	}
	shareFrame, err := controller.Render(ctx, shared.Next, shared.Token)
	if err != nil {
		t.Fatalf("render share: %v", err)
	}
	if shareFrame.Result.Score != 100 || shareFrame.Insight == "" {
		t.Fatalf("expected share to carry the score, got %+v", shareFrame)
	}
	if !equalStrings(actionLabels(shareFrame.Actions), []string{app.LabelRetake, app.LabelPurchase}) {
		t.Fatalf("unexpected share buttons %v", actionLabels(shareFrame.Actions))
	}
}

func TestFrameAnonymousUserIsNotSaved(t *testing.T) {
	store := memory.NewScoreStore()
	controller, _ := newTestController(store)

	tr := completeQuiz(t, controller, nil)
	if !tr.IsComplete {
		t.Fatalf("expected completion")
	}
	if store.Len() != 0 {
		t.Fatalf("expected nothing saved for anonymous user, got %d", store.Len())
	}
}

func TestFrameStoreFailureStillShowsResults(t *testing.T) {
	controller, _ := newTestController(failingStore{})
	tr := completeQuiz(t, controller, &domain.Identity{UserID: 1})
	if !tr.IsComplete || tr.Result == nil {
		t.Fatalf("expected results despite store failure, got %+v", tr)
	}
}

func TestFrameMalformedTokenRestarts(t *testing.T) {
	ctx := context.Background()
	controller, _ := newTestController(memory.NewScoreStore())

	tr, err := controller.SubmitAnswer(ctx, app.AnswerSubmission{QuestionID: 1, AnswerIndex: 0, PriorToken: "garbage"}, nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if tr.Next != app.StartStep() {
		t.Fatalf("expected restart on bad token, got %s", tr.Next)
	}

	for _, step := range []app.Step{app.QuestionStep(2), app.ResultsStep(), app.ShareStep()} {
		frame, err := controller.Render(ctx, step, "%%%")
		if err != nil {
			t.Fatalf("render %s: %v", step, err)
		}
		if frame.Step != app.StartStep() {
			t.Fatalf("expected start frame for %s with bad token, got %s", step, frame.Step)
		}
	}

	shared, err := controller.Share(ctx, "garbage")
	if err != nil || shared.Next != app.StartStep() {
		t.Fatalf("expected share with bad token to restart, got %+v, %v", shared, err)
	}
}

func TestFrameQuestionPastBankShowsResults(t *testing.T) {
	ctx := context.Background()
	controller, _ := newTestController(memory.NewScoreStore())
	codec := controller.Codec()
	token := codec.Encode(domain.QuizState{
		CurrentQuestion: 12,
		Answers:         []domain.Answer{{QuestionID: 1, AnswerIndex: 3}},
	})

	frame, err := controller.Render(ctx, app.QuestionStep(12), token)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if frame.Step != app.ResultsStep() || frame.Result == nil || frame.Result.Score != 13 {
		t.Fatalf("expected results from accumulated answers, got %+v", frame)
	}
}

func TestFrameQuestionWithoutTokenStartsEmpty(t *testing.T) {
	controller, _ := newTestController(memory.NewScoreStore())
	frame, err := controller.Render(context.Background(), app.QuestionStep(1), "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if frame.Step != app.QuestionStep(1) || len(frame.Actions) != 4 {
		t.Fatalf("expected q1 with four options, got %+v", frame)
	}
}

func TestFrameResultsWithoutScoreRecomputes(t *testing.T) {
	controller, _ := newTestController(memory.NewScoreStore())
	token := controller.Codec().Encode(domain.QuizState{
		CurrentQuestion: 9,
		Answers:         bestAnswers(domain.DefaultBank()),
	})
	frame, err := controller.Render(context.Background(), app.ResultsStep(), token)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if frame.Result.Score != 100 {
		t.Fatalf("expected recomputed score 100, got %d", frame.Result.Score)
	}
}

func TestFrameBankFailureSurfaces(t *testing.T) {
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(), time.Minute)
	service := app.NewScoreService(memory.NewScoreStore(), banks, "missing", nil)
	controller := app.NewFrameController(banks, "missing", service, nil)

	_, err := controller.SubmitAnswer(context.Background(), app.AnswerSubmission{PriorToken: controller.Begin().Token}, nil)
	if !errors.Is(err, domain.ErrBankNotFound) {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

func completeQuiz(t *testing.T, controller *app.FrameController, who *domain.Identity) app.Transition {
	t.Helper()
	tr := controller.Begin()
	for _, answer := range bestAnswers(domain.DefaultBank()) {
		var err error
		tr, err = controller.SubmitAnswer(context.Background(), app.AnswerSubmission{
			QuestionID:  answer.QuestionID,
			AnswerIndex: answer.AnswerIndex,
			PriorToken:  tr.Token,
		}, who)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	return tr
}

func newTestController(store app.ScoreStore) (*app.FrameController, *app.ScoreService) {
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(domain.DefaultBank()), 5*time.Minute)
	service := app.NewScoreService(store, banks, domain.DefaultBankID, app.NewLeaderboardHub())
	return app.NewFrameController(banks, domain.DefaultBankID, service, nil), service
}

var errConnRefused = errors.New("connection refused")

type failingStore struct{}

func (failingStore) Save(context.Context, domain.ScoreRecord) (domain.ScoreRecord, error) {
	return domain.ScoreRecord{}, errConnRefused
}

func (failingStore) ForUser(context.Context, int64) ([]domain.ScoreRecord, error) {
	return nil, errConnRefused
}

func (failingStore) Leaderboard(context.Context, int) ([]domain.ScoreRecord, error) {
	return nil, errConnRefused
}

func (failingStore) Rank(context.Context, int64) (int, error) {
	return 0, errConnRefused
}

func actionLabels(actions []app.Action) []string {
	labels := make([]string, 0, len(actions))
	for _, a := range actions {
		labels = append(labels, a.Label)
	}
	return labels
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
