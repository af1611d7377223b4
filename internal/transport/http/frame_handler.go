package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"longevity-frame/internal/app"
	"longevity-frame/internal/identity"
	"longevity-frame/internal/render"
)

// FrameOptions are the deployment specifics baked into frame responses.
type FrameOptions struct {
	BaseURL       string
	PurchaseURL   string
	ShareHashtags string
}

// FrameHandler serves the frame HTML, its button actions and its images.
type FrameHandler struct {
	frames   *app.FrameController
	renderer *render.Renderer
	opts     FrameOptions
	log      *zap.Logger
}

func NewFrameHandler(frames *app.FrameController, renderer *render.Renderer, opts FrameOptions, log *zap.Logger) *FrameHandler {
	if log == nil {
		log = zap.NewNop()
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &FrameHandler{frames: frames, renderer: renderer, opts: opts, log: log}
}

// frameAction is the body a frame client posts on a button press. Its
// contents are unsigned, so they are only logged.
type frameAction struct {
	UntrustedData struct {
		FID         int64  `json:"fid"`
		ButtonIndex int    `json:"buttonIndex"`
		URL         string `json:"url"`
	} `json:"untrustedData"`
}

type answerResponse struct {
	NextStateToken string `json:"nextStateToken"`
	IsComplete     bool   `json:"isComplete"`
	Next           string `json:"next"`
}

// Get renders the frame named by ?state= with the carried ?stateData= token.
func (h *FrameHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.respond(w, r, app.ParseStep(q.Get("state")), q.Get("stateData"))
}

// GetShare renders the share frame.
func (h *FrameHandler) GetShare(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, app.ShareStep(), r.URL.Query().Get("stateData"))
}

// Post handles the begin and retake buttons. Unknown actions restart.
func (h *FrameHandler) Post(w http.ResponseWriter, r *http.Request) {
	h.readAction(r)
	var tr app.Transition
	switch r.URL.Query().Get("action") {
	case "begin":
		tr = h.frames.Begin()
	default:
		tr = h.frames.Restart()
	}
	h.respond(w, r, tr.Next, tr.Token)
}

// PostAnswer handles an answer button. Clients asking for JSON get the
// transition itself instead of the next frame. A bank that cannot be loaded
// degrades to the start frame.
func (h *FrameHandler) PostAnswer(w http.ResponseWriter, r *http.Request) {
	h.readAction(r)
	q := r.URL.Query()
	questionID, qErr := strconv.Atoi(q.Get("question"))
	answerIndex, aErr := strconv.Atoi(q.Get("answer"))
	if qErr != nil || aErr != nil {
		tr := h.frames.Restart()
		h.respondTransition(w, r, tr)
		return
	}

	tr, err := h.frames.SubmitAnswer(r.Context(), app.AnswerSubmission{
		QuestionID:  questionID,
		AnswerIndex: answerIndex,
		PriorToken:  q.Get("stateData"),
	}, identity.FromContext(r.Context()))
	if err != nil {
		h.log.Error("submit answer", zap.Error(err))
		tr = h.frames.Restart()
	}
	h.respondTransition(w, r, tr)
}

// PostShare handles the share button on the results frame. Failures
// degrade to the start frame.
func (h *FrameHandler) PostShare(w http.ResponseWriter, r *http.Request) {
	h.readAction(r)
	tr, err := h.frames.Share(r.Context(), r.URL.Query().Get("stateData"))
	if err != nil {
		h.log.Error("share", zap.Error(err))
		tr = h.frames.Restart()
	}
	h.respond(w, r, tr.Next, tr.Token)
}

// Image renders a frame image from its query parameters. Rendering failures
// degrade to a 1x1 placeholder instead of an error.
func (h *FrameHandler) Image(w http.ResponseWriter, r *http.Request) {
	ref := render.ParseQuery(r.URL.Query())
	data, err := h.renderer.Render(ref)
	if err != nil {
		h.log.Warn("render image", zap.String("type", string(ref.Kind)), zap.Error(err))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(render.FallbackPNG())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(data)
}

// InitialImage serves the start image at a stable path for embeds.
func (h *FrameHandler) InitialImage(w http.ResponseWriter, r *http.Request) {
	r.URL.RawQuery = "type=initial"
	h.Image(w, r)
}

func (h *FrameHandler) respondTransition(w http.ResponseWriter, r *http.Request, tr app.Transition) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, answerResponse{
			NextStateToken: tr.Token,
			IsComplete:     tr.IsComplete,
			Next:           tr.Next.String(),
		})
		return
	}
	h.respond(w, r, tr.Next, tr.Token)
}

func (h *FrameHandler) respond(w http.ResponseWriter, r *http.Request, step app.Step, token string) {
	frame, err := h.frames.Render(r.Context(), step, token)
	if err != nil {
		h.log.Error("render frame", zap.String("step", step.String()), zap.Error(err))
		frame, _ = h.frames.Render(r.Context(), app.StartStep(), "")
	}

	var buf bytes.Buffer
	if err := renderFramePage(&buf, h.page(frame)); err != nil {
		h.log.Error("frame template", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *FrameHandler) page(frame app.Frame) framePage {
	page := framePage{
		Title:    "Longevity Score Calculator 🧬",
		Heading:  "Longevity Score Calculator",
		Subtitle: "Take the 2-minute science-backed longevity assessment",
		ImageURL: h.opts.BaseURL + "/api/frame/image?" + render.Query(frame.Image).Encode(),
		PostURL:  h.opts.BaseURL + "/api/frame",
		BuyURL:   h.opts.PurchaseURL,
	}
	for i, action := range frame.Actions {
		page.Buttons = append(page.Buttons, h.button(i+1, action))
	}
	if frame.Step.Kind == app.StepShare && frame.Result != nil {
		page.Title = "Share Your Score 🧬"
		page.Heading = "Share Your Longevity Score"
		page.PostURL = h.opts.BaseURL + "/api/frame/share"
		page.ShareText = h.shareText(frame)
	}
	return page
}

func (h *FrameHandler) button(index int, action app.Action) frameButton {
	b := frameButton{Index: index, Label: action.Label, Action: "post"}
	switch action.Kind {
	case app.ActionBegin:
		b.Target = h.opts.BaseURL + "/api/frame?action=begin"
	case app.ActionAnswer:
		q := url.Values{}
		q.Set("question", strconv.Itoa(action.QuestionID))
		q.Set("answer", strconv.Itoa(action.AnswerIndex))
		q.Set("stateData", action.Token)
		b.Target = h.opts.BaseURL + "/api/frame/answer?" + q.Encode()
	case app.ActionShare:
		b.Target = h.opts.BaseURL + "/api/frame/share?stateData=" + url.QueryEscape(action.Token)
	case app.ActionPurchase:
		b.Action = "post_redirect"
		b.Target = h.opts.PurchaseURL
	default:
		b.Target = h.opts.BaseURL + "/api/frame?action=restart"
	}
	return b
}

func (h *FrameHandler) shareText(frame app.Frame) string {
	return fmt.Sprintf("🧬 My Longevity Score: %d/100\nI'm in the %s category!\n\n%s\n\nCan you beat my score? 👇\n%s/api/frame\n\n%s",
		frame.Result.Score, frame.Result.Badge, frame.Insight, h.opts.BaseURL, h.opts.ShareHashtags)
}

func (h *FrameHandler) readAction(r *http.Request) {
	if r.Body == nil {
		return
	}
	var action frameAction
	err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&action)
	if err != nil && !errors.Is(err, io.EOF) {
		h.log.Debug("unparseable frame action body", zap.Error(err))
		return
	}
	h.log.Debug("frame action",
		zap.String("path", r.URL.Path),
		zap.Int64("untrustedFid", action.UntrustedData.FID),
		zap.Int("button", action.UntrustedData.ButtonIndex))
}
