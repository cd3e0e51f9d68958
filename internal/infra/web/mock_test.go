//go:build !integration

package web

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// --- Mock use cases ---

type mockNotifierUC struct {
	usecase.NotifierUseCase
	mu        sync.Mutex
	scheduled []model.NotificationEvent
	err       error
}

func (m *mockNotifierUC) Schedule(ctx context.Context, ev *model.NotificationEvent) (string, error) {
	if err := ev.Validate(); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled = append(m.scheduled, *ev)
	return "01JOBID", nil
}

type mockChatLinkUC struct {
	usecase.ChatLinkUseCase
	mu       sync.Mutex
	users    map[int64]bool
	bindings map[int64]string
}

func newMockChatLinkUC(userIDs ...int64) *mockChatLinkUC {
	m := &mockChatLinkUC{users: map[int64]bool{}, bindings: map[int64]string{}}
	for _, id := range userIDs {
		m.users[id] = true
	}
	return m
}

func (m *mockChatLinkUC) BindChat(ctx context.Context, userID int64, chatID string) error {
	b, err := model.NewChatBinding(userID, chatID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.users[userID] {
		return domain.ErrNotFound
	}
	m.bindings[b.UserID] = b.ChatID
	return nil
}

type mockSettingsUC struct {
	usecase.SettingsUseCase
	mu sync.Mutex
	st model.Settings
}

func (m *mockSettingsUC) Current(ctx context.Context) (*model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := m.st
	return &cp, nil
}

func (m *mockSettingsUC) Update(ctx context.Context, p model.SettingsPatch) (*model.Settings, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobID := ""
	if p.Apply(&m.st) && m.st.Enabled {
		jobID = "01SETUP"
	}
	cp := m.st
	return &cp, jobID, nil
}
