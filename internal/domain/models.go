package domain

import "time"

// Option is one selectable answer of a question.
type Option struct {
	Text   string `json:"text"`
	Points int    `json:"points"`
}

// Question is an immutable quiz question. Option order is significant: the
// option index is the answer selector.
type Question struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Emoji   string   `json:"emoji"`
	Options []Option `json:"options"`
}

// MaxPoints returns the highest point value among the question's options.
func (q Question) MaxPoints() int {
	best := 0
	for i, opt := range q.Options {
		if i == 0 || opt.Points > best {
			best = opt.Points
		}
	}
	return best
}

// Bank is an ordered, versioned set of questions.
type Bank struct {
	ID        string     `json:"id"`
	Version   string     `json:"version"`
	Questions []Question `json:"questions"`
}

// Len reports the number of questions in the bank.
func (b Bank) Len() int {
	return len(b.Questions)
}

// At returns the question at 1-based position pos.
func (b Bank) At(pos int) (Question, bool) {
	if pos < 1 || pos > len(b.Questions) {
		return Question{}, false
	}
	return b.Questions[pos-1], true
}

// Answer records the option a user picked for a question.
type Answer struct {
	QuestionID  int `json:"questionId"`
	AnswerIndex int `json:"answerIndex"`
}

// QuizState is the in-progress quiz carried through the client as an opaque
// token. Score, Tier and Badge are only set once the quiz is complete.
type QuizState struct {
	CurrentQuestion int      `json:"currentQuestion"`
	Answers         []Answer `json:"answers"`
	Score           *int     `json:"score,omitempty"`
	Tier            Tier     `json:"tier,omitempty"`
	Badge           string   `json:"badge,omitempty"`
}

// ScoreResult is derived from a score and never stored on its own.
type ScoreResult struct {
	Score      int      `json:"score"`
	Tier       Tier     `json:"tier"`
	Message    string   `json:"message"`
	Tips       []string `json:"tips"`
	Badge      string   `json:"badge"`
	BadgeColor string   `json:"badgeColor"`
}

// ScoreRecord is one completed attempt by an identified user.
type ScoreRecord struct {
	UserID      int64     `json:"userId"`
	Username    string    `json:"username,omitempty"`
	Score       int       `json:"score"`
	Tier        Tier      `json:"tier"`
	Badge       string    `json:"badge"`
	BankVersion string    `json:"bankVersion,omitempty"`
	Answers     []Answer  `json:"answers"`
	Timestamp   time.Time `json:"timestamp"`
}

// LeaderboardEntry is the public view of a user's best record.
type LeaderboardEntry struct {
	UserID    int64  `json:"fid"`
	Username  string `json:"username,omitempty"`
	Score     int    `json:"score"`
	Tier      Tier   `json:"tier"`
	Badge     string `json:"badge"`
	Timestamp string `json:"timestamp"`
}

// HistoryEntry is the public view of one of a user's own records.
type HistoryEntry struct {
	Score     int    `json:"score"`
	Tier      Tier   `json:"tier"`
	Badge     string `json:"badge"`
	Timestamp string `json:"timestamp"`
}

// ImageKind selects which frame image is rendered.
type ImageKind string

const (
	ImageInitial  ImageKind = "initial"
	ImageQuestion ImageKind = "question"
	ImageResults  ImageKind = "results"
	ImageShare    ImageKind = "share"
)

// ImageRef describes a frame image for the rendering collaborator.
type ImageRef struct {
	Kind  ImageKind
	Num   int
	Total int
	Text  string
	Emoji string
	Score int
	Tier  Tier
	Badge string
}

// Identity is a user verified by the external identity collaborator.
type Identity struct {
	UserID   int64
	Username string
}
