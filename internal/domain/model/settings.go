package model

import "strings"

// Settings is the runtime-mutable Telegram configuration. It is re-read on
// every use so changes apply without a restart.
type Settings struct {
	Enabled        bool   `json:"telegram_notifications_enabled"`
	AccessToken    string `json:"telegram_access_token"`
	Secret         string `json:"telegram_secret"`
	EnableAllTypes bool   `json:"telegram_enable_all_notification_types"`
	// EnabledTypes is a pipe-delimited list of notification type names.
	EnabledTypes string `json:"telegram_enabled_notification_types"`
}

// TypeEnabled reports whether notifications of type t should be relayed.
func (s *Settings) TypeEnabled(t NotificationType) bool {
	if s.EnableAllTypes {
		return true
	}
	name := t.Name()
	for _, part := range strings.Split(s.EnabledTypes, "|") {
		if strings.TrimSpace(part) == name {
			return true
		}
	}
	return false
}

// SettingsPatch carries a partial update; nil fields are left untouched.
type SettingsPatch struct {
	Enabled        *bool   `json:"telegram_notifications_enabled,omitempty"`
	AccessToken    *string `json:"telegram_access_token,omitempty"`
	EnableAllTypes *bool   `json:"telegram_enable_all_notification_types,omitempty"`
	EnabledTypes   *string `json:"telegram_enabled_notification_types,omitempty"`
}

// Apply merges the patch into s and reports whether the webhook must be
// re-registered.
func (p SettingsPatch) Apply(s *Settings) (webhookChanged bool) {
	if p.Enabled != nil && *p.Enabled != s.Enabled {
		s.Enabled = *p.Enabled
		webhookChanged = true
	}
	if p.AccessToken != nil && *p.AccessToken != s.AccessToken {
		s.AccessToken = *p.AccessToken
		webhookChanged = true
	}
	if p.EnableAllTypes != nil {
		s.EnableAllTypes = *p.EnableAllTypes
	}
	if p.EnabledTypes != nil {
		s.EnabledTypes = *p.EnabledTypes
	}
	return webhookChanged
}
