package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"longevity-frame/internal/app"
	"longevity-frame/internal/config"
	"longevity-frame/internal/identity"
	"longevity-frame/internal/render"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Frames   *app.FrameController
	Scores   *app.ScoreService
	Renderer *render.Renderer
	Verifier *identity.Verifier
	Config   config.Config
	Log      *zap.Logger
}

// NewRouter wires every route behind CORS, identity and request logging.
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	frames := NewFrameHandler(d.Frames, d.Renderer, FrameOptions{
		BaseURL:       d.Config.Frame.BaseURL,
		PurchaseURL:   d.Config.Frame.PurchaseURL,
		ShareHashtags: d.Config.Frame.ShareHashtags,
	}, log)
	api := NewAPIHandler(d.Scores, d.Config.Manifest, log)
	ws := NewWSHandler(d.Scores, log)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/frame", frames.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/frame", frames.Post).Methods(http.MethodPost)
	r.HandleFunc("/api/frame/answer", frames.PostAnswer).Methods(http.MethodPost)
	r.HandleFunc("/api/frame/share", frames.GetShare).Methods(http.MethodGet)
	r.HandleFunc("/api/frame/share", frames.PostShare).Methods(http.MethodPost)
	r.HandleFunc("/api/frame/image", frames.Image).Methods(http.MethodGet)
	r.HandleFunc("/image.png", frames.InitialImage).Methods(http.MethodGet)

	r.HandleFunc("/api/leaderboard", api.Leaderboard).Methods(http.MethodGet)
	r.HandleFunc("/api/user/scores", identity.RequireIdentity(api.UserScores)).Methods(http.MethodGet)
	r.HandleFunc("/api/user/scores", identity.RequireIdentity(api.SubmitScores)).Methods(http.MethodPost)
	r.HandleFunc("/api/user/rank", identity.RequireIdentity(api.Rank)).Methods(http.MethodGet)

	r.HandleFunc("/.well-known/farcaster.json", api.Manifest).Methods(http.MethodGet)
	r.HandleFunc("/api/farcaster-manifest", api.Manifest).Methods(http.MethodGet)
	r.HandleFunc("/api/webhook", api.Webhook).Methods(http.MethodPost)
	r.HandleFunc("/api/webhook", api.WebhookHealth).Methods(http.MethodGet)

	r.HandleFunc("/ws/leaderboard", ws.ServeWS)

	r.Use(identity.Middleware(d.Verifier, log))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	})
	return LoggerMiddleware(log)(c.Handler(r))
}
