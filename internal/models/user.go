package models

// UserRecord is the stored profile of an authenticated user. UID is the
// partition key for every other per-user record.
type UserRecord struct {
	UID         string     `json:"uid"`
	DisplayName string     `json:"displayName,omitempty"`
	Email       string     `json:"email,omitempty"`
	PhotoURL    string     `json:"photoURL,omitempty"`
	CreatedAt   *Timestamp `json:"createdAt,omitempty"`
	LastLogin   *Timestamp `json:"lastLogin,omitempty"`
}

// Settings are per-user preferences.
type Settings struct {
	DefaultDifficulty    string `json:"defaultDifficulty"`
	DefaultDuration      string `json:"defaultDuration"`
	AutoWaterBreaks      bool   `json:"autoWaterBreaks"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
}

// SettingsUpdate is a partial settings change; nil fields are left untouched.
type SettingsUpdate struct {
	DefaultDifficulty    *string `json:"defaultDifficulty,omitempty" validate:"omitempty,oneof=All Easy Medium Hard"`
	DefaultDuration      *string `json:"defaultDuration,omitempty" validate:"omitempty,oneof=All Short Medium Long"`
	AutoWaterBreaks      *bool   `json:"autoWaterBreaks,omitempty"`
	NotificationsEnabled *bool   `json:"notificationsEnabled,omitempty"`
}

// DefaultSettings returns the settings a user has before changing any.
func DefaultSettings() Settings {
	return Settings{
		DefaultDifficulty:    "All",
		DefaultDuration:      "All",
		AutoWaterBreaks:      true,
		NotificationsEnabled: true,
	}
}

// Apply merges the non-nil fields of u onto s.
func (s Settings) Apply(u SettingsUpdate) Settings {
	if u.DefaultDifficulty != nil {
		s.DefaultDifficulty = *u.DefaultDifficulty
	}
	if u.DefaultDuration != nil {
		s.DefaultDuration = *u.DefaultDuration
	}
	if u.AutoWaterBreaks != nil {
		s.AutoWaterBreaks = *u.AutoWaterBreaks
	}
	if u.NotificationsEnabled != nil {
		s.NotificationsEnabled = *u.NotificationsEnabled
	}
	return s
}
