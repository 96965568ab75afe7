package http_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
	api "github.com/SezimOrozobekova/velox-backend/internal/http"
	"github.com/SezimOrozobekova/velox-backend/internal/nlp"
	"github.com/SezimOrozobekova/velox-backend/internal/queue"
	"github.com/SezimOrozobekova/velox-backend/internal/repo"
)

// memStore implements api.Store in memory so handler tests need no
// database.
type memStore struct {
	mu          sync.Mutex
	users       map[primitive.ObjectID]*domain.User
	categories  map[primitive.ObjectID]*domain.Category
	tasks       map[primitive.ObjectID]*domain.Task
	credentials map[primitive.ObjectID]*domain.GoogleCredential // by user id
	refresh     map[string]*repo.RefreshToken                   // by hashed-less plain token
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[primitive.ObjectID]*domain.User),
		categories:  make(map[primitive.ObjectID]*domain.Category),
		tasks:       make(map[primitive.ObjectID]*domain.Task),
		credentials: make(map[primitive.ObjectID]*domain.GoogleCredential),
		refresh:     make(map[string]*repo.RefreshToken),
	}
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) CreateUser(ctx context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ActivateUser(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.Active = true
	}
	return nil
}

func (m *memStore) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, name, wakeUp, sleep *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if wakeUp != nil {
		u.WakeUpTime = *wakeUp
	}
	if sleep != nil {
		u.SleepTime = *sleep
	}
	return nil
}

func (m *memStore) SaveRefresh(ctx context.Context, userID primitive.ObjectID, plain string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh[plain] = &repo.RefreshToken{
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *memStore) FindValidRefresh(ctx context.Context, plain string) (*repo.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.refresh[plain]
	if !ok || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		return nil, nil
	}
	cp := *rt
	return &cp, nil
}

func (m *memStore) RevokeRefresh(ctx context.Context, plain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rt, ok := m.refresh[plain]; ok {
		rt.Revoked = true
	}
	return nil
}

func (m *memStore) CreateCategory(ctx context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.categories {
		if ex.UserID == c.UserID && ex.Name == c.Name {
			return repo.ErrDuplicate
		}
	}
	c.ID = primitive.NewObjectID()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m *memStore) ListCategories(ctx context.Context, userID primitive.ObjectID) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Category
	for _, c := range m.categories {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) FindCategory(ctx context.Context, userID, id primitive.ObjectID) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.categories[id]; ok && c.UserID == userID {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) UpdateCategoryName(ctx context.Context, userID, id primitive.ObjectID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	c.Name = name
	return true, nil
}

func (m *memStore) DeleteCategory(ctx context.Context, userID, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(m.categories, id)
	for _, t := range m.tasks {
		if t.UserID == userID && t.CategoryID != nil && *t.CategoryID == id {
			t.CategoryID = nil
		}
	}
	return true, nil
}

func (m *memStore) EnsureDefaultCategories(ctx context.Context, userID primitive.ObjectID) (int, error) {
	existing, _ := m.ListCategories(ctx, userID)
	names := make([]string, 0, len(existing))
	for _, c := range existing {
		names = append(names, c.Name)
	}
	created := 0
	for _, name := range domain.MissingCategories(names) {
		if err := m.CreateCategory(ctx, &domain.Category{UserID: userID, Name: name}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (m *memStore) CreateTask(ctx context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC()
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memStore) ListTasks(ctx context.Context, userID primitive.ObjectID, q repo.TaskQuery) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	term := strings.ToLower(strings.TrimSpace(q.Search))
	var out []domain.Task
	for _, t := range m.tasks {
		if t.UserID != userID {
			continue
		}
		if term != "" && !m.taskMatches(t, term) {
			continue
		}
		out = append(out, *t)
	}
	key := strings.TrimPrefix(q.Ordering, "-")
	desc := strings.HasPrefix(q.Ordering, "-")
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch key {
		case "time_start":
			less = out[i].TimeStart < out[j].TimeStart
		case "created_at":
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		default:
			less = out[i].Date < out[j].Date
		}
		if desc {
			return !less
		}
		return less
	})
	return out, nil
}

func (m *memStore) taskMatches(t *domain.Task, term string) bool {
	if strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Notes), term) {
		return true
	}
	if t.CategoryID != nil {
		if c, ok := m.categories[*t.CategoryID]; ok &&
			strings.Contains(strings.ToLower(c.Name), term) {
			return true
		}
	}
	return false
}

func (m *memStore) FindTask(ctx context.Context, userID, id primitive.ObjectID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok && t.UserID == userID {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) ReplaceTask(ctx context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.tasks[t.ID]
	if !ok || ex.UserID != t.UserID {
		return repo.ErrNotFound
	}
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memStore) DeleteTask(ctx context.Context, userID, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok && t.UserID == userID {
		delete(m.tasks, id)
		return true, nil
	}
	return false, nil
}

func (m *memStore) UpsertCredential(ctx context.Context, c *domain.GoogleCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.credentials[c.UserID] = &cp
	return nil
}

func (m *memStore) FindCredentialByUser(ctx context.Context, userID primitive.ObjectID) (*domain.GoogleCredential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.credentials[userID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) UpdateCredentialToken(ctx context.Context, userID primitive.ObjectID, access string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.credentials[userID]
	if !ok {
		return repo.ErrNotFound
	}
	c.AccessToken = access
	c.TokenExpiry = expiry
	return nil
}

// memStash is an in-memory StateStash for OAuth flow tests.
type memStash struct {
	mu     sync.Mutex
	states map[string]string
}

func newMemStash() *memStash { return &memStash{states: make(map[string]string)} }

func (s *memStash) SaveOAuthState(ctx context.Context, state, uid string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = uid
	return nil
}

func (s *memStash) TakeOAuthState(ctx context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid, ok := s.states[state]
	if !ok {
		return "", nil
	}
	delete(s.states, state)
	return uid, nil
}

// fakeCompleter plays the external completion API.
type fakeCompleter struct {
	resp string
	err  error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return f.resp, f.err
}

// capturePub hands the publish context back to the test.
type capturePub struct {
	ctxs chan context.Context
}

func newCapturePub() *capturePub {
	return &capturePub{ctxs: make(chan context.Context, 1)}
}

func (p *capturePub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	p.ctxs <- ctx
	return nil
}

func (p *capturePub) Close() error { return nil }

// stubSyncer records sync calls and fails on demand.
type stubSyncer struct {
	mu     sync.Mutex
	calls  int
	result error
}

func (s *stubSyncer) Sync(ctx context.Context, userID primitive.ObjectID, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.result
}

type testEnv struct {
	Store     *memStore
	Handler   *api.Handler
	Router    *gin.Engine
	Completer *fakeCompleter
	Syncer    *stubSyncer
	Now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	h := api.NewHandler(store, "test-secret", "test-activation-key", 15, 14, queue.NewNoop())
	h.DevMode = true

	completer := &fakeCompleter{}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	ex := nlp.NewExtractor(completer)
	ex.Now = func() time.Time { return now }
	h.Extractor = ex

	syncer := &stubSyncer{}
	h.Syncer = syncer

	return &testEnv{
		Store:     store,
		Handler:   h,
		Router:    api.NewRouter(h),
		Completer: completer,
		Syncer:    syncer,
		Now:       now,
	}
}

func (e *testEnv) do(method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)
	return w
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// rebuildRouter re-registers routes after test-specific handler wiring
// (e.g. attaching the OAuth config).
func rebuildRouter(env *testEnv) *gin.Engine {
	return api.NewRouter(env.Handler)
}
