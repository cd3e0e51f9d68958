package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/infra/logging"
	"telegram-forum-notifier/internal/infra/metrics"
	"telegram-forum-notifier/internal/usecase"
)

const (
	HookPath    = "/telegram/hook/{key}"
	maxHookBody = 1 << 20
)

// Server exposes the Telegram webhook endpoint.
type Server struct {
	dispatcher usecase.DispatcherUseCase
	log        *zerolog.Logger
}

func NewServer(dispatcher usecase.DispatcherUseCase, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "WebhookServer").Logger()
	return &Server{dispatcher: dispatcher, log: &l}
}

// Router returns a chi router with the webhook, /health and the standard middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceID(), RequestLog(s.log), Recover(s.log))
	s.Register(r)
	return r
}

// Register attaches the handlers to r.
func (s *Server) Register(r chi.Router) {
	r.Post(HookPath, s.handleHook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	if err := s.dispatcher.Authorize(ctx, chi.URLParam(r, "key")); err != nil {
		switch {
		case errors.Is(err, domain.ErrTelegramDisabled):
			metrics.IncWebhookRejected("disabled")
			http.NotFound(w, r)
		case errors.Is(err, domain.ErrInvalidAccess):
			metrics.IncWebhookRejected("bad_secret")
			log.Error().Str("remote", r.RemoteAddr).Msg("telegram webhook called with a wrong secret")
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			metrics.IncWebhookRejected("unavailable")
			log.Error().Err(err).Msg("telegram settings unavailable")
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		}
		return
	}

	s.dispatch(r, log)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// dispatch decodes and handles one update. Once the secret matched, Telegram
// must see 200 whatever happens here, so panics are logged and swallowed.
func (s *Server) dispatch(r *http.Request, log *zerolog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("telegram update handler panicked")
		}
	}()

	var update tgbotapi.Update
	body := io.LimitReader(r.Body, maxHookBody)
	if err := json.NewDecoder(body).Decode(&update); err != nil {
		log.Warn().Err(err).Msg("undecodable telegram update")
		return
	}
	in := s.dispatcher.Handle(r.Context(), &update)
	log.Debug().Int("update_id", update.UpdateID).Str("intent", string(in.Kind)).Msg("telegram update handled")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
