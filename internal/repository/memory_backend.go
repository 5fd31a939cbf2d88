package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	appErrors "github.com/A7maad1/LSA/pkg/errors"
	"github.com/A7maad1/LSA/pkg/restclient"
)

// Call records one request received by a MemoryBackend.
type Call struct {
	Method   string
	Resource string
	Query    url.Values
	Body     json.RawMessage
}

// MemoryBackend is an in-process stand-in for the table API. It understands
// the id=eq filter, order and limit. It serves local development when no
// backend URL is configured.
type MemoryBackend struct {
	mu     sync.Mutex
	tables map[string][]map[string]interface{}
	nextID int64
	calls  []Call
	// Fail, when set, is returned for every request.
	Fail error
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{tables: map[string][]map[string]interface{}{}}
}

// Seed inserts rows without recording calls.
func (m *MemoryBackend) Seed(table string, rows ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range rows {
		m.insert(table, copyRow(row))
	}
}

// Calls returns a copy of the recorded calls.
func (m *MemoryBackend) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Rows returns a copy of a table's rows.
func (m *MemoryBackend) Rows(table string) []map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(m.tables[table]))
	for _, row := range m.tables[table] {
		out = append(out, copyRow(row))
	}
	return out
}

// REST implements Backend.
func (m *MemoryBackend) REST(ctx context.Context, method, resource string, query url.Values, body interface{}) (*restclient.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, appErrors.ErrTimeout.Message)
	}

	var raw json.RawMessage
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Resource: resource, Query: query, Body: raw})
	if m.Fail != nil {
		return nil, m.Fail
	}

	switch method {
	case http.MethodGet:
		rows := m.filter(resource, query)
		sortRows(rows, query.Get("order"))
		if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit >= 0 && limit < len(rows) {
			rows = rows[:limit]
		}
		return jsonResponse(http.StatusOK, rows)
	case http.MethodPost:
		var row map[string]interface{}
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, appErrors.Backend(http.StatusBadRequest, "invalid json")
		}
		created := m.insert(resource, row)
		return jsonResponse(http.StatusCreated, []map[string]interface{}{created})
	case http.MethodPatch:
		var changes map[string]interface{}
		if err := json.Unmarshal(raw, &changes); err != nil {
			return nil, appErrors.Backend(http.StatusBadRequest, "invalid json")
		}
		updated := []map[string]interface{}{}
		for _, row := range m.tables[resource] {
			if matches(row, query) {
				for k, v := range changes {
					row[k] = v
				}
				updated = append(updated, copyRow(row))
			}
		}
		return jsonResponse(http.StatusOK, updated)
	case http.MethodDelete:
		kept := m.tables[resource][:0]
		for _, row := range m.tables[resource] {
			if !matches(row, query) {
				kept = append(kept, row)
			}
		}
		m.tables[resource] = kept
		return &restclient.Response{Status: http.StatusNoContent}, nil
	default:
		return nil, appErrors.Backend(http.StatusMethodNotAllowed, "")
	}
}

// UsersTable holds the dashboard accounts checked by the authenticate_user
// function of a MemoryBackend. Rows carry email, password, role and full_name.
const UsersTable = "users"

// RPC implements the authenticate_user function over UsersTable. Other
// functions are reported as missing.
func (m *MemoryBackend) RPC(ctx context.Context, fn string, args interface{}) (*restclient.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, appErrors.ErrTimeout.Message)
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: http.MethodPost, Resource: "rpc/" + fn, Body: encoded})
	if m.Fail != nil {
		return nil, m.Fail
	}
	if fn != "authenticate_user" {
		return nil, appErrors.Backend(http.StatusNotFound, "function not found")
	}

	var creds struct {
		Email    string `json:"p_email"`
		Password string `json:"p_password"`
	}
	if err := json.Unmarshal(encoded, &creds); err != nil {
		return nil, appErrors.Backend(http.StatusBadRequest, "invalid json")
	}
	for _, row := range m.tables[UsersTable] {
		if !strings.EqualFold(fmt.Sprint(row["email"]), creds.Email) || fmt.Sprint(row["password"]) != creds.Password {
			continue
		}
		return jsonResponse(http.StatusOK, []map[string]interface{}{{
			"success":   true,
			"user_id":   row["id"],
			"email":     row["email"],
			"role":      row["role"],
			"full_name": row["full_name"],
		}})
	}
	return jsonResponse(http.StatusOK, []map[string]interface{}{{"success": false, "message": "البريد الإلكتروني أو كلمة المرور غير صحيحة"}})
}

func (m *MemoryBackend) insert(table string, row map[string]interface{}) map[string]interface{} {
	switch id := row["id"].(type) {
	case nil:
		m.nextID++
		row["id"] = m.nextID
	case int:
		m.bump(int64(id))
	case int64:
		m.bump(id)
	case float64:
		m.bump(int64(id))
	}
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	m.tables[table] = append(m.tables[table], row)
	return copyRow(row)
}

func (m *MemoryBackend) bump(id int64) {
	if id > m.nextID {
		m.nextID = id
	}
}

func (m *MemoryBackend) filter(table string, query url.Values) []map[string]interface{} {
	out := []map[string]interface{}{}
	for _, row := range m.tables[table] {
		if matches(row, query) {
			out = append(out, copyRow(row))
		}
	}
	return out
}

func matches(row map[string]interface{}, query url.Values) bool {
	cond := query.Get("id")
	if cond == "" {
		return true
	}
	want := strings.TrimPrefix(cond, "eq.")
	return fmt.Sprint(row["id"]) == want
}

func sortRows(rows []map[string]interface{}, order string) {
	if order == "" {
		return
	}
	column, direction, _ := strings.Cut(order, ".")
	desc := direction == "desc"
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return lessValue(rows[j][column], rows[i][column])
		}
		return lessValue(rows[i][column], rows[j][column])
	})
}

func lessValue(a, b interface{}) bool {
	af, aNum := number(a)
	bf, bNum := number(b)
	if aNum && bNum {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func jsonResponse(status int, v interface{}) (*restclient.Response, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &restclient.Response{Status: status, Body: raw}, nil
}

func copyRow(row map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
