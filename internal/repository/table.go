package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/restclient"
)

// Fields is a row payload keyed by column name.
type Fields map[string]interface{}

// Backend is the subset of the request client used by tables.
type Backend interface {
	REST(ctx context.Context, method, resource string, query url.Values, body interface{}) (*restclient.Response, error)
}

// Descriptor declares how a table's payloads are shaped before sending.
type Descriptor struct {
	Table string
	// Order is a PostgREST order clause such as "created_at.desc".
	Order string
	// Columns is the allow-list of writable columns.
	Columns  []string
	Required []string
	// MaxLengths truncates string columns to at most n characters.
	MaxLengths   map[string]int
	Defaults     map[string]interface{}
	StampCreated bool
	StampUpdated bool
}

// Table is a gateway over one backend table. It performs no pagination:
// List returns every row in Order.
type Table[T any] struct {
	desc    Descriptor
	backend Backend
	retry   restclient.RetryPolicy
	logger  *zap.Logger
	now     func() time.Time
}

// NewTable constructs a table gateway.
func NewTable[T any](backend Backend, desc Descriptor, logger *zap.Logger) *Table[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table[T]{
		desc:    desc,
		backend: backend,
		logger:  logger.With(zap.String("table", desc.Table)),
		now:     time.Now,
	}
}

// WithRetry enables backoff on reads.
func (t *Table[T]) WithRetry(policy restclient.RetryPolicy) *Table[T] {
	t.retry = policy
	return t
}

// Name returns the backend table name.
func (t *Table[T]) Name() string {
	return t.desc.Table
}

// List fetches all rows ordered by the descriptor.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	query := url.Values{"select": {"*"}}
	if t.desc.Order != "" {
		query.Set("order", t.desc.Order)
	}

	var rows []T
	err := restclient.Retry(ctx, t.retry, func(ctx context.Context) error {
		resp, err := t.backend.REST(ctx, http.MethodGet, t.desc.Table, query, nil)
		if err != nil {
			return err
		}
		rows = nil
		return resp.Decode(&rows)
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.desc.Table, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// Get fetches one row by id.
func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	query := url.Values{"select": {"*"}, "id": {"eq." + id}, "limit": {"1"}}

	var rows []T
	err := restclient.Retry(ctx, t.retry, func(ctx context.Context) error {
		resp, err := t.backend.REST(ctx, http.MethodGet, t.desc.Table, query, nil)
		if err != nil {
			return err
		}
		rows = nil
		return resp.Decode(&rows)
	})
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", t.desc.Table, id, err)
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %s not found", t.desc.Table, id))
	}
	return &rows[0], nil
}

// Create validates and shapes fields, inserts them and returns the created row.
// When the backend does not echo the row, the shaped payload is returned.
func (t *Table[T]) Create(ctx context.Context, fields Fields) (*T, error) {
	payload, err := t.Shape(fields, false)
	if err != nil {
		return nil, err
	}

	resp, err := t.backend.REST(ctx, http.MethodPost, t.desc.Table, nil, payload)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", t.desc.Table, err)
	}
	record, err := t.firstOrPayload(resp, payload)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", t.desc.Table, err)
	}
	return record, nil
}

// Update applies a partial change. Required columns may be omitted but not blanked.
func (t *Table[T]) Update(ctx context.Context, id string, fields Fields) (*T, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	payload, err := t.Shape(fields, true)
	if err != nil {
		return nil, err
	}

	resp, err := t.backend.REST(ctx, http.MethodPatch, t.desc.Table, url.Values{"id": {"eq." + id}}, payload)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", t.desc.Table, id, err)
	}

	var rows []T
	if !resp.IsNull() && !resp.IsSuccessMarker() {
		if err := resp.Decode(&rows); err != nil {
			return nil, fmt.Errorf("update %s %s: %w", t.desc.Table, id, err)
		}
		if len(rows) == 0 {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s %s not found", t.desc.Table, id))
		}
		return &rows[0], nil
	}

	payload["id"] = id
	return decodePayload[T](payload)
}

// Patch sends exactly the given allow-listed fields with no shaping or stamps.
func (t *Table[T]) Patch(ctx context.Context, id string, fields Fields) error {
	if err := requireID(id); err != nil {
		return err
	}
	payload := Fields{}
	for key, value := range fields {
		if t.allowed(key) {
			payload[key] = value
		}
	}
	if len(payload) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	if _, err := t.backend.REST(ctx, http.MethodPatch, t.desc.Table, url.Values{"id": {"eq." + id}}, payload); err != nil {
		return fmt.Errorf("patch %s %s: %w", t.desc.Table, id, err)
	}
	return nil
}

// Delete removes a row. Deleting a missing id succeeds.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	if _, err := t.backend.REST(ctx, http.MethodDelete, t.desc.Table, url.Values{"id": {"eq." + id}}, nil); err != nil {
		return fmt.Errorf("delete %s %s: %w", t.desc.Table, id, err)
	}
	t.logger.Debug("row deleted", zap.String("id", id))
	return nil
}

// Shape applies the allow-list, defaults, required check, truncation and
// timestamps. Validation fails before any network call is made.
func (t *Table[T]) Shape(fields Fields, partial bool) (Fields, error) {
	payload := Fields{}
	for key, value := range fields {
		if !t.allowed(key) {
			continue
		}
		payload[key] = normalize(value)
	}

	if !partial {
		for key, value := range t.desc.Defaults {
			if isBlank(payload[key]) {
				payload[key] = value
			}
		}
		var missing []string
		for _, key := range t.desc.Required {
			if isBlank(payload[key]) {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missing, ", "))
		}
	} else {
		if len(payload) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
		}
		for _, key := range t.desc.Required {
			if value, ok := payload[key]; ok && isBlank(value) {
				return nil, appErrors.Clone(appErrors.ErrValidation, key+" cannot be empty")
			}
		}
	}

	for key, max := range t.desc.MaxLengths {
		if s, ok := payload[key].(string); ok {
			payload[key] = Truncate(s, max)
		}
	}

	stamp := t.now().UTC().Format(time.RFC3339Nano)
	if !partial && t.desc.StampCreated {
		if _, ok := payload["created_at"]; !ok {
			payload["created_at"] = stamp
		}
	}
	if t.desc.StampUpdated {
		payload["updated_at"] = stamp
	}
	return payload, nil
}

func (t *Table[T]) allowed(key string) bool {
	for _, column := range t.desc.Columns {
		if column == key {
			return true
		}
	}
	return false
}

func (t *Table[T]) firstOrPayload(resp *restclient.Response, payload Fields) (*T, error) {
	if resp.IsNull() || resp.IsSuccessMarker() {
		return decodePayload[T](payload)
	}
	var rows []T
	if err := resp.Decode(&rows); err != nil {
		var single T
		if errSingle := resp.Decode(&single); errSingle != nil {
			return nil, err
		}
		return &single, nil
	}
	if len(rows) == 0 {
		return decodePayload[T](payload)
	}
	return &rows[0], nil
}

func decodePayload[T any](payload Fields) (*T, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode payload")
	}
	var record T
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "failed to decode payload")
	}
	return &record, nil
}

// Truncate shortens s to at most max characters.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	return nil
}

func normalize(value interface{}) interface{} {
	switch v := value.(type) {
	case *string:
		if v == nil {
			return nil
		}
		return normalize(*v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		return trimmed
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return value
	}
}

func isBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
