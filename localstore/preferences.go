package localstore

import (
	"github.com/cppla/planner/planner"
)

const (
	keyTheme      = "theme"
	keyWeekStart  = "weekStart"
	keyTimeFormat = "timeFormat"
	keyToken      = "session_token"
	keyServer     = "server_url"
)

// Preferences are the settings applied at startup.
type Preferences struct {
	Theme      planner.Theme
	WeekStart  planner.WeekStart
	TimeFormat planner.TimeFormat
}

// DefaultPreferences is light theme, Sunday-first weeks and 12 hour labels.
func DefaultPreferences() Preferences {
	return Preferences{Theme: planner.ThemeLight, WeekStart: planner.WeekStartsSunday, TimeFormat: planner.TwelveHour}
}

// LoadPreferences reads the stored settings. Missing or unrecognized values fall back to defaults.
func (s *Store) LoadPreferences() Preferences {
	p := DefaultPreferences()
	if t, err := planner.ParseTheme(s.GetOr(keyTheme, "")); err == nil {
		p.Theme = t
	}
	if ws, err := planner.ParseWeekStart(s.GetOr(keyWeekStart, "")); err == nil {
		p.WeekStart = ws
	}
	if tf, err := planner.ParseTimeFormat(s.GetOr(keyTimeFormat, "")); err == nil {
		p.TimeFormat = tf
	}
	return p
}

// SavePreferences writes all three settings.
func (s *Store) SavePreferences(p Preferences) error {
	for _, kv := range [][2]string{
		{keyTheme, string(p.Theme)},
		{keyWeekStart, string(p.WeekStart)},
		{keyTimeFormat, string(p.TimeFormat)},
	} {
		if err := s.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// SessionToken returns the stored bearer token, or "" when signed out.
func (s *Store) SessionToken() string {
	return s.GetOr(keyToken, "")
}

// SetSessionToken stores the bearer token; an empty token clears it.
func (s *Store) SetSessionToken(token string) error {
	if token == "" {
		return s.Delete(keyToken)
	}
	return s.Set(keyToken, token)
}

// ServerURL returns the remembered collaborator address.
func (s *Store) ServerURL() string {
	return s.GetOr(keyServer, "")
}

// SetServerURL remembers the collaborator address used at the last sign-in.
func (s *Store) SetServerURL(url string) error {
	return s.Set(keyServer, url)
}
