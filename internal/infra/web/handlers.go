package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/infra/logging"
	"telegram-forum-notifier/internal/infra/worker"
	"telegram-forum-notifier/internal/usecase"
)

const maxBody = 64 << 10

// notificationsCreateHandler queues a forum notification for delivery.
// Disabled relays answer 202 with queued=false so the forum does not retry.
func notificationsCreateHandler(uc usecase.NotifierUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev model.NotificationEvent
		if err := decode(w, r, &ev); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		jobID, err := uc.Schedule(r.Context(), &ev)
		switch {
		case err == nil:
			writeJSON(w, http.StatusAccepted, map[string]any{"queued": true, "job_id": jobID})
		case errors.Is(err, domain.ErrTelegramDisabled):
			writeJSON(w, http.StatusAccepted, map[string]any{"queued": false})
		case errors.Is(err, domain.ErrInvalidArgument):
			http.Error(w, "user_id, topic_id and post_number are required", http.StatusBadRequest)
		case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrPoolClosed):
			http.Error(w, "Busy", http.StatusServiceUnavailable)
		default:
			l := logging.With(r.Context(), log)
			l.Error().Err(err).Msg("schedule notification")
			http.Error(w, "Failed to schedule notification", http.StatusInternalServerError)
		}
	}
}

type bindChatRequest struct {
	ChatID string `json:"chat_id"`
}

func bindChatHandler(uc usecase.ChatLinkUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || userID <= 0 {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}
		var req bindChatRequest
		if err := decode(w, r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		err = uc.BindChat(r.Context(), userID, req.ChatID)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, domain.ErrInvalidArgument):
			http.Error(w, "chat_id is required", http.StatusBadRequest)
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			l := logging.With(r.Context(), log)
			l.Error().Err(err).Int64("user_id", userID).Msg("bind telegram chat")
			http.Error(w, "Failed to bind chat", http.StatusInternalServerError)
		}
	}
}

// settingsView hides the secret and most of the token.
type settingsView struct {
	Enabled        bool   `json:"telegram_notifications_enabled"`
	AccessToken    string `json:"telegram_access_token"`
	HasSecret      bool   `json:"telegram_secret_set"`
	EnableAllTypes bool   `json:"telegram_enable_all_notification_types"`
	EnabledTypes   string `json:"telegram_enabled_notification_types"`
	SetupJobID     string `json:"setup_job_id,omitempty"`
}

func viewOf(st *model.Settings, jobID string) settingsView {
	token := st.AccessToken
	if token != "" {
		token = logging.Redact(token, false)
	}
	return settingsView{
		Enabled:        st.Enabled,
		AccessToken:    token,
		HasSecret:      st.Secret != "",
		EnableAllTypes: st.EnableAllTypes,
		EnabledTypes:   st.EnabledTypes,
		SetupJobID:     jobID,
	}
}

func settingsGetHandler(uc usecase.SettingsUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := uc.Current(r.Context())
		if err != nil {
			l := logging.With(r.Context(), log)
			l.Error().Err(err).Msg("load settings")
			http.Error(w, "Failed to load settings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(st, ""))
	}
}

func settingsUpdateHandler(uc usecase.SettingsUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch model.SettingsPatch
		if err := decode(w, r, &patch); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		st, jobID, err := uc.Update(r.Context(), patch)
		if err != nil {
			l := logging.With(r.Context(), log)
			l.Error().Err(err).Msg("update settings")
			http.Error(w, "Failed to update settings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(st, jobID))
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
