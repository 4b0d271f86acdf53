package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cppla/planner/client"
	"github.com/cppla/planner/models"
)

// fakeBackend keeps rows as JSON objects and overlays upserts the way the service does.
type fakeBackend struct {
	user   *models.User
	token  string
	rows   map[string]map[string]map[string]interface{}
	nextID int
	calls  []string
	fail   map[string]bool
}

func newFakeBackend(user *models.User) *fakeBackend {
	return &fakeBackend{user: user, rows: map[string]map[string]map[string]interface{}{}, fail: map[string]bool{}}
}

func (f *fakeBackend) record(op string) client.Result {
	f.calls = append(f.calls, op)
	if f.fail[op] {
		return client.Result{Error: "injected failure", Status: 500}
	}
	return client.Result{Success: true, Status: 200}
}

func (f *fakeBackend) data(v interface{}) client.Result {
	b, _ := json.Marshal(v)
	return client.Result{Success: true, Data: b, Status: 200}
}

func (f *fakeBackend) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeBackend) table(name string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, row := range f.rows[name] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i]["id"].(string) < out[j]["id"].(string) })
	return out
}

func (f *fakeBackend) GetCurrentUser(ctx context.Context) (*models.User, client.Result) {
	return f.user, f.record("me")
}

func (f *fakeBackend) CreateAccount(ctx context.Context, email, password, displayName string) (*models.User, client.Result) {
	if res := f.record("register"); !res.Success {
		return nil, res
	}
	f.user = &models.User{ID: "user-1", Email: email, DisplayName: displayName}
	f.token = "token-" + email
	return f.user, f.data(f.user)
}

func (f *fakeBackend) Authenticate(ctx context.Context, email, password string) (*models.User, client.Result) {
	if res := f.record("login"); !res.Success {
		return nil, res
	}
	f.token = "token-" + email
	return f.user, f.data(f.user)
}

func (f *fakeBackend) EndSession(ctx context.Context) client.Result {
	f.token = ""
	return f.record("logout")
}

func (f *fakeBackend) Token() string { return f.token }

func (f *fakeBackend) Upsert(ctx context.Context, table string, record interface{}) client.Result {
	if res := f.record("upsert " + table); !res.Success {
		return res
	}
	b, err := json.Marshal(record)
	if err != nil {
		return client.Result{Error: err.Error()}
	}
	var body map[string]interface{}
	if err := json.Unmarshal(b, &body); err != nil {
		return client.Result{Error: err.Error()}
	}
	if body["user_id"] != f.user.ID {
		return client.Result{Error: "record belongs to another user", Status: 403}
	}
	if f.rows[table] == nil {
		f.rows[table] = map[string]map[string]interface{}{}
	}
	id, _ := body["id"].(string)
	row, ok := f.rows[table][id]
	if !ok {
		if id == "" {
			f.nextID++
			id = fmt.Sprintf("%s-%03d", table, f.nextID)
		}
		row = map[string]interface{}{}
	}
	for k, v := range body {
		row[k] = v
	}
	row["id"] = id
	f.rows[table][id] = row
	return f.data([]interface{}{row})
}

func (f *fakeBackend) QueryAll(ctx context.Context, table, userID string) client.Result {
	if res := f.record("query " + table); !res.Success {
		return res
	}
	out := []map[string]interface{}{}
	for _, row := range f.table(table) {
		if row["user_id"] == userID {
			out = append(out, row)
		}
	}
	return f.data(out)
}

func (f *fakeBackend) DeleteByID(ctx context.Context, table, id, userID string) client.Result {
	if res := f.record("delete " + table); !res.Success {
		return res
	}
	n := 0
	if row, ok := f.rows[table][id]; ok && row["user_id"] == userID {
		delete(f.rows[table], id)
		n = 1
	}
	return f.data(map[string]int{"deleted": n})
}

func (f *fakeBackend) Stats(ctx context.Context, date string) client.Result {
	if res := f.record("stats"); !res.Success {
		return res
	}
	return f.data(map[string]interface{}{"date": date, "habits": len(f.rows[models.TableHabits])})
}

func (f *fakeBackend) Export(ctx context.Context, date, timeFormat, theme string) ([]byte, client.Result) {
	res := f.record("export")
	if !res.Success {
		return nil, res
	}
	return []byte(fmt.Sprintf("<html>%s %s %s</html>", date, timeFormat, theme)), res
}
