// Package app is the planner front end: a signed-in session, its views and their mirrors
// onto the storage service.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/cppla/planner/client"
	"github.com/cppla/planner/localstore"
	"github.com/cppla/planner/models"
)

// Backend is the storage collaborator. *client.Client implements it.
type Backend interface {
	GetCurrentUser(ctx context.Context) (*models.User, client.Result)
	CreateAccount(ctx context.Context, email, password, displayName string) (*models.User, client.Result)
	Authenticate(ctx context.Context, email, password string) (*models.User, client.Result)
	EndSession(ctx context.Context) client.Result
	Upsert(ctx context.Context, table string, record interface{}) client.Result
	QueryAll(ctx context.Context, table, userID string) client.Result
	DeleteByID(ctx context.Context, table, id, userID string) client.Result
}

// Reporter is implemented by backends that can render stats and exports.
type Reporter interface {
	Stats(ctx context.Context, date string) client.Result
	Export(ctx context.Context, date, timeFormat, theme string) ([]byte, client.Result)
}

type tokenHolder interface {
	Token() string
}

// PrefStore keeps settings and the session token between runs. *localstore.Store implements it.
type PrefStore interface {
	LoadPreferences() localstore.Preferences
	SavePreferences(p localstore.Preferences) error
	SetSessionToken(token string) error
}

var (
	// ErrNotSignedIn is returned by Open when the backend reports no current user.
	ErrNotSignedIn = errors.New("not signed in")
	// ErrNotFound is returned for ids missing from a view's index.
	ErrNotFound = errors.New("not found")
	// ErrUnsupported is returned when the backend lacks an optional capability.
	ErrUnsupported = errors.New("not supported by backend")
)

// BackendError is a failed collaborator call.
type BackendError struct {
	Op      string
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func resultErr(op string, res client.Result) error {
	if res.Success {
		return nil
	}
	return &BackendError{Op: op, Status: res.Status, Message: res.Error}
}

// upsertOne writes record and decodes the stored row the backend echoes back.
func upsertOne[T any](ctx context.Context, s *Session, table string, record interface{}) (T, error) {
	var zero T
	res := s.backend.Upsert(ctx, table, record)
	if err := s.mirrorErr("upsert "+table, res); err != nil {
		return zero, err
	}
	var rows []T
	if err := res.Decode(&rows); err != nil {
		return zero, fmt.Errorf("decode %s: %w", table, err)
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("upsert %s: empty response", table)
	}
	return rows[0], nil
}

// queryAll loads every row of the signed-in user in table.
func queryAll[T any](ctx context.Context, s *Session, table string) ([]T, error) {
	res := s.backend.QueryAll(ctx, table, s.user.ID)
	if err := s.mirrorErr("query "+table, res); err != nil {
		return nil, err
	}
	var rows []T
	if err := res.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", table, err)
	}
	return rows, nil
}

func (s *Session) deleteByID(ctx context.Context, table, id string) error {
	return s.mirrorErr("delete "+table, s.backend.DeleteByID(ctx, table, id, s.user.ID))
}

// patch builds a partial record; the service overlays it onto the stored row.
func (s *Session) patch(id string, fields map[string]interface{}) map[string]interface{} {
	fields["id"] = id
	fields["user_id"] = s.user.ID
	return fields
}

func (s *Session) owned(id string) models.Owned {
	return models.Owned{ID: id, UserID: s.user.ID}
}

func (s *Session) mirrorErr(op string, res client.Result) error {
	err := resultErr(op, res)
	if err != nil {
		s.log.Sugar().Warnw("backend call failed", "op", op, "status", res.Status, "error", res.Error)
	}
	return err
}
