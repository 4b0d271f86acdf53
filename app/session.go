package app

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/planner/localstore"
	"github.com/cppla/planner/models"
	"github.com/cppla/planner/planner"
)

// Session is the signed-in planner. It is not safe for concurrent use; every operation is a
// discrete user action.
type Session struct {
	backend Backend
	store   PrefStore
	log     *zap.Logger
	now     func() time.Time

	user    *models.User
	date    time.Time
	month   planner.MonthCursor
	prefs   localstore.Preferences
	palette planner.Palette

	views   *Views
	daily   *DailyView
	weekly  *WeeklyView
	monthly *MonthlyView
	habits  *HabitsView
	goals   *GoalsView
}

// Option configures Open.
type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Open checks for a current user and shows the daily view. It returns ErrNotSignedIn when the
// backend has no session.
func Open(ctx context.Context, backend Backend, store PrefStore, logger *zap.Logger, opts ...Option) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		backend: backend,
		store:   store,
		log:     logger,
		now:     time.Now,
		views:   NewViews(),
	}
	for _, o := range opts {
		o(s)
	}

	user, res := backend.GetCurrentUser(ctx)
	if err := resultErr("current user", res); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotSignedIn
	}
	s.user = user
	s.log = s.log.With(zap.String("user_id", user.ID))
	s.applyPreferences(store.LoadPreferences())
	s.date = planner.Midnight(s.now())
	s.month = planner.CursorFor(s.date)

	s.views.OnReady(s.build)
	if err := s.views.Show(ctx, ViewDaily); err != nil {
		return s, err
	}
	return s, nil
}

// User returns the signed-in user.
func (s *Session) User() *models.User { return s.user }

// Date returns the current date cursor.
func (s *Session) Date() time.Time { return s.date }

// Preferences returns the applied settings.
func (s *Session) Preferences() localstore.Preferences { return s.prefs }

// Palette returns the colors of the applied theme.
func (s *Session) Palette() planner.Palette { return s.palette }

// Active returns the shown view.
func (s *Session) Active() View { return s.views.Active() }

// OnReady registers fn for the first visit of every view.
func (s *Session) OnReady(fn ReadyFunc) { s.views.OnReady(fn) }

// Show switches to v, loading it on the first visit.
func (s *Session) Show(ctx context.Context, v View) error {
	return s.views.Show(ctx, v)
}

func (s *Session) build(ctx context.Context, v View) error {
	switch v {
	case ViewDaily:
		s.daily = &DailyView{s: s}
		return s.daily.Load(ctx)
	case ViewWeekly:
		s.weekly = &WeeklyView{s: s}
		return s.weekly.Load(ctx)
	case ViewMonthly:
		s.monthly = &MonthlyView{s: s}
		return s.monthly.Load(ctx)
	case ViewHabits:
		s.habits = &HabitsView{s: s}
		return s.habits.Load(ctx)
	case ViewGoals:
		s.goals = &GoalsView{s: s}
		return s.goals.Load(ctx)
	}
	return nil
}

// Daily shows and returns the daily view.
func (s *Session) Daily(ctx context.Context) (*DailyView, error) {
	err := s.Show(ctx, ViewDaily)
	return s.daily, err
}

// Weekly shows and returns the weekly view.
func (s *Session) Weekly(ctx context.Context) (*WeeklyView, error) {
	err := s.Show(ctx, ViewWeekly)
	return s.weekly, err
}

// Monthly shows and returns the monthly view.
func (s *Session) Monthly(ctx context.Context) (*MonthlyView, error) {
	err := s.Show(ctx, ViewMonthly)
	return s.monthly, err
}

// Habits shows and returns the habits view.
func (s *Session) Habits(ctx context.Context) (*HabitsView, error) {
	err := s.Show(ctx, ViewHabits)
	return s.habits, err
}

// Goals shows and returns the goals view.
func (s *Session) Goals(ctx context.Context) (*GoalsView, error) {
	err := s.Show(ctx, ViewGoals)
	return s.goals, err
}

// SelectDate moves the date cursor and reloads the daily and weekly views that were built.
func (s *Session) SelectDate(ctx context.Context, date string) error {
	d, err := planner.ParseStorageDate(date)
	if err != nil {
		return err
	}
	s.date = d
	if s.daily != nil {
		if err := s.daily.Load(ctx); err != nil {
			return err
		}
	}
	if s.weekly != nil {
		return s.weekly.Load(ctx)
	}
	return nil
}

// SaveSettings validates and stores the settings, then applies them without reloading data.
func (s *Session) SaveSettings(ctx context.Context, theme, weekStart, timeFormat string) error {
	p := s.prefs
	var err error
	if theme != "" {
		if p.Theme, err = planner.ParseTheme(theme); err != nil {
			return err
		}
	}
	if weekStart != "" {
		if p.WeekStart, err = planner.ParseWeekStart(weekStart); err != nil {
			return err
		}
	}
	if timeFormat != "" {
		if p.TimeFormat, err = planner.ParseTimeFormat(timeFormat); err != nil {
			return err
		}
	}
	if err := s.store.SavePreferences(p); err != nil {
		s.log.Sugar().Errorw("save settings failed", "error", err)
		return fmt.Errorf("save settings: %w", err)
	}
	weekChanged := p.WeekStart != s.prefs.WeekStart
	s.applyPreferences(p)
	if weekChanged && s.weekly != nil {
		return s.weekly.Load(ctx)
	}
	return nil
}

func (s *Session) applyPreferences(p localstore.Preferences) {
	s.prefs = p
	s.palette = planner.PaletteFor(p.Theme)
}

// FormatHour labels an hour with the applied time format.
func (s *Session) FormatHour(hour int) string {
	return planner.FormatHour(hour, s.prefs.TimeFormat)
}

// SignOut ends the backend session and forgets the stored token.
func (s *Session) SignOut(ctx context.Context) error {
	err := resultErr("sign out", s.backend.EndSession(ctx))
	if serr := s.store.SetSessionToken(""); serr != nil && err == nil {
		err = serr
	}
	return err
}

// Stats fetches the dashboard counters of the cursor date.
func (s *Session) Stats(ctx context.Context) (map[string]interface{}, error) {
	r, ok := s.backend.(Reporter)
	if !ok {
		return nil, ErrUnsupported
	}
	res := r.Stats(ctx, planner.FormatDateForStorage(s.date))
	if err := resultErr("stats", res); err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := res.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return out, nil
}

// Export renders the cursor date as a standalone HTML page in the applied theme and time format.
func (s *Session) Export(ctx context.Context) ([]byte, error) {
	r, ok := s.backend.(Reporter)
	if !ok {
		return nil, ErrUnsupported
	}
	page, res := r.Export(ctx, planner.FormatDateForStorage(s.date), string(s.prefs.TimeFormat), string(s.prefs.Theme))
	if err := resultErr("export", res); err != nil {
		return nil, err
	}
	return page, nil
}

const (
	minPasswordLength = 6
	// bcrypt ignores anything past 72 bytes and the service rejects it
	maxPasswordBytes = 72
)

func validateCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", planner.Invalid("email", "is required")
	}
	if a, err := mail.ParseAddress(email); err != nil || a.Address != email {
		return "", planner.Invalid("email", "is not a valid address")
	}
	if password == "" {
		return "", planner.Invalid("password", "is required")
	}
	return email, nil
}

// SignUp validates the form, creates the account and remembers the token.
func SignUp(ctx context.Context, backend Backend, store PrefStore, email, password, confirm, displayName string) (*models.User, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, planner.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return nil, planner.Invalid("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	if password != confirm {
		return nil, planner.Invalid("confirm", "passwords do not match")
	}
	user, res := backend.CreateAccount(ctx, email, password, strings.TrimSpace(displayName))
	if err := resultErr("sign up", res); err != nil {
		return nil, err
	}
	return user, rememberToken(backend, store)
}

// SignIn authenticates and remembers the token.
func SignIn(ctx context.Context, backend Backend, store PrefStore, email, password string) (*models.User, error) {
	email, err := validateCredentials(email, password)
	if err != nil {
		return nil, err
	}
	user, res := backend.Authenticate(ctx, email, password)
	if err := resultErr("sign in", res); err != nil {
		return nil, err
	}
	return user, rememberToken(backend, store)
}

func rememberToken(backend Backend, store PrefStore) error {
	th, ok := backend.(tokenHolder)
	if !ok {
		return nil
	}
	return store.SetSessionToken(th.Token())
}
