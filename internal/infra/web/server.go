package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/infra/logging"
	"telegram-forum-notifier/internal/usecase"
)

// Server is the host API the forum calls: notification intake, chat binding
// and runtime settings. All /api/v1 routes require a host JWT.
type Server struct {
	notifier usecase.NotifierUseCase
	links    usecase.ChatLinkUseCase
	settings usecase.SettingsUseCase
	auth     *AuthManager
	log      *zerolog.Logger
}

func NewServer(
	notifier usecase.NotifierUseCase,
	links usecase.ChatLinkUseCase,
	settings usecase.SettingsUseCase,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "HostAPI").Logger()
	return &Server{
		notifier: notifier,
		links:    links,
		settings: settings,
		auth:     auth,
		log:      &l,
	}
}

// RegisterRoutes mounts /api/v1 and /metrics on r.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/notifications", notificationsCreateHandler(s.notifier, s.log))
		r.Put("/users/{id}/telegram", bindChatHandler(s.links, s.log))
		r.Get("/settings", settingsGetHandler(s.settings, s.log))
		r.Put("/settings", settingsUpdateHandler(s.settings, s.log))
	})
	r.Handle("/metrics", promhttp.Handler())
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			s.log.Error().Msg("host API secret is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		claims, err := s.auth.ParseFromRequest(r)
		if errors.Is(err, errMissingToken) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if err != nil {
			l := logging.With(r.Context(), s.log)
			l.Warn().Err(err).Msg("host API token rejected")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		l := logging.With(r.Context(), s.log)
		l.Debug().Str("subject", claims.Subject).Str("path", r.URL.Path).Msg("host API call")
		next.ServeHTTP(w, r)
	})
}
