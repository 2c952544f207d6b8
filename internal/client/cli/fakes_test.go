package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/cache"
	"github.com/dmitrijs2005/gophtodo/internal/client/config"
	"github.com/dmitrijs2005/gophtodo/internal/client/models"
	"github.com/dmitrijs2005/gophtodo/internal/common"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeTodos applies operations to a real cache and then returns err.
type fakeTodos struct {
	cache    *cache.Cache
	err      error
	calls    []string
	lastEdit models.TaskEdit
}

func (f *fakeTodos) Load(ctx context.Context) error {
	f.calls = append(f.calls, "load")
	return f.err
}

func (f *fakeTodos) Add(ctx context.Context, text string, due *time.Time, p common.Priority) (models.Task, error) {
	f.calls = append(f.calls, "add")
	t, err := f.cache.Add(text, due, p)
	if err != nil {
		return t, err
	}
	return t, f.err
}

func (f *fakeTodos) Toggle(ctx context.Context, localID string) (models.Task, error) {
	f.calls = append(f.calls, "toggle")
	_, after, err := f.cache.Toggle(localID)
	if err != nil {
		return after, err
	}
	return after, f.err
}

func (f *fakeTodos) Edit(ctx context.Context, localID string, e models.TaskEdit) (models.Task, error) {
	f.calls = append(f.calls, "edit")
	f.lastEdit = e
	_, after, err := f.cache.Edit(localID, e)
	if err != nil {
		return after, err
	}
	return after, f.err
}

func (f *fakeTodos) Delete(ctx context.Context, localID string) error {
	f.calls = append(f.calls, "delete")
	if f.err != nil {
		return f.err
	}
	_, err := f.cache.Delete(localID)
	return err
}

func (f *fakeTodos) ClearCompleted(ctx context.Context) (int, error) {
	f.calls = append(f.calls, "clear")
	if f.err != nil {
		return 0, f.err
	}
	return len(f.cache.ClearCompleted()), nil
}

func (f *fakeTodos) Reorder(ctx context.Context, from, to int) error {
	f.calls = append(f.calls, "reorder")
	return f.cache.Reorder(from, to)
}

func (f *fakeTodos) Reset(ctx context.Context) error {
	f.calls = append(f.calls, "reset")
	f.cache.Reset()
	return f.err
}

type fakeSyncer struct {
	n     int
	err   error
	calls int
}

func (f *fakeSyncer) Sync(ctx context.Context) (int, error) {
	f.calls++
	return f.n, f.err
}

func (f *fakeSyncer) Run(ctx context.Context, interval time.Duration, active func() bool, onErr func(error)) {
	<-ctx.Done()
}

type fakeReminders struct{}

func (fakeReminders) Run(ctx context.Context, interval time.Duration, onErr func(error)) {
	<-ctx.Done()
}

type fakeExporter struct {
	url string
	err error
}

func (f fakeExporter) Export(ctx context.Context) (string, error) { return f.url, f.err }

type fakeAuth struct {
	loggedIn bool

	regEmail, regPassword, regName string
	regErr                         error

	loginEmail, loginPassword string
	loginSwitched             bool
	loginErr                  error

	resumeEmail string
	resumeErr   error

	logoutErr error
	pingErr   error
}

func (f *fakeAuth) Register(ctx context.Context, email, password, name string) error {
	f.regEmail, f.regPassword, f.regName = email, password, name
	return f.regErr
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (bool, error) {
	f.loginEmail, f.loginPassword = email, password
	if f.loginErr != nil {
		return false, f.loginErr
	}
	f.loggedIn = true
	return f.loginSwitched, nil
}

func (f *fakeAuth) Resume(ctx context.Context) (string, error) {
	if f.resumeErr != nil {
		return "", f.resumeErr
	}
	f.loggedIn = true
	return f.resumeEmail, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	if f.logoutErr != nil {
		return f.logoutErr
	}
	f.loggedIn = false
	return nil
}

func (f *fakeAuth) LoggedIn() bool                 { return f.loggedIn }
func (f *fakeAuth) Ping(ctx context.Context) error  { return f.pingErr }
func (f *fakeAuth) Close(ctx context.Context) error { return nil }

type appFixture struct {
	app    *App
	out    *bytes.Buffer
	tasks  *cache.Cache
	todos  *fakeTodos
	syncer *fakeSyncer
	auth   *fakeAuth
}

func newAppFixture(input ...string) *appFixture {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	tasks := cache.New(func() time.Time { return t0 })
	f := &appFixture{
		out:    &bytes.Buffer{},
		tasks:  tasks,
		todos:  &fakeTodos{cache: tasks},
		syncer: &fakeSyncer{},
		auth:   &fakeAuth{loggedIn: true},
	}
	f.app = &App{
		config:      cfg,
		authService: f.auth,
		todos:       f.todos,
		tasks:       tasks,
		syncer:      f.syncer,
		reminders:   fakeReminders{},
		exporter:    fakeExporter{url: "https://s3.example/export.json"},
		reader:      bufio.NewReader(strings.NewReader(strings.Join(input, "\n"))),
		out:         f.out,
		now:         func() time.Time { return t0 },
	}
	return f
}

// seed adds tasks straight to the cache.
func (f *appFixture) seed(t *testing.T, texts ...string) []models.Task {
	t.Helper()
	out := make([]models.Task, 0, len(texts))
	for _, s := range texts {
		task, err := f.tasks.Add(s, nil, common.PriorityMedium)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, task)
	}
	return out
}

// stubInputs makes the prompt helpers return answers in order.
func stubInputs(t *testing.T, password string, answers ...string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(answers) == 0 {
			return "", io.EOF
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(password), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}
