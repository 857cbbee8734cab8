package authstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"taskpad/internal/service"
	"taskpad/internal/storage"
	"taskpad/internal/storage/memstore"
	"taskpad/internal/store/authstore"
	"taskpad/internal/testutil"
)

func newStore(t *testing.T, st storage.Storage, auth service.AuthService) *authstore.Store {
	t.Helper()
	s, err := authstore.New(context.Background(), st, auth, authstore.Options{})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func slot(t *testing.T, st storage.Storage) string {
	t.Helper()
	v, err := st.Get(context.Background(), authstore.TokenKey)
	if errors.Is(err, storage.ErrNotFound) {
		return ""
	}
	if err != nil {
		t.Fatalf("read slot: %v", err)
	}
	return v
}

func TestLogin_Success(t *testing.T) {
	st := memstore.New()
	auth := testutil.NewFakeAuthService()
	auth.AddAccount("u1", "Ann", "ann@example.com", "secret")
	s := newStore(t, st, auth)

	if !s.Login(context.Background(), "ann@example.com", "secret") {
		t.Fatalf("expected login to succeed, last error %q", s.State().LastError)
	}

	got := s.State()
	if !got.IsAuthenticated {
		t.Error("expected IsAuthenticated")
	}
	if got.User == nil || got.User.ID != "u1" {
		t.Errorf("unexpected user: %+v", got.User)
	}
	if got.Token == "" {
		t.Error("expected a token")
	}
	if got.IsLoading {
		t.Error("expected IsLoading to be reset")
	}
	if slot(t, st) != got.Token {
		t.Errorf("expected slot %q, got %q", got.Token, slot(t, st))
	}
}

func TestLogin_FailureLeavesPriorStateUntouched(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *testutil.FakeAuthService)
	}{
		{"remote error", func(f *testutil.FakeAuthService) { f.LoginErr = errors.New("network down") }},
		{"missing token", func(f *testutil.FakeAuthService) {
			f.LoginResponse = &service.LoginResponse{User: &service.User{ID: "x"}}
		}},
		{"missing user", func(f *testutil.FakeAuthService) {
			f.LoginResponse = &service.LoginResponse{Token: "tok"}
		}},
		{"wrong password", func(f *testutil.FakeAuthService) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := memstore.New()
			auth := testutil.NewFakeAuthService()
			auth.AddAccount("u1", "Ann", "ann@example.com", "secret")
			s := newStore(t, st, auth)

			// Establish a prior, logged-out-but-identified state.
			s.SetUser(service.User{ID: "prev", Name: "Prev"}, "prev-token")
			s.Logout()
			before := s.State()

			tt.setup(auth)
			if s.Login(context.Background(), "ann@example.com", "wrong") {
				t.Fatal("expected login to fail")
			}

			after := s.State()
			if after.IsAuthenticated {
				t.Error("expected IsAuthenticated to stay false")
			}
			if after.User != before.User || after.Token != before.Token {
				t.Errorf("identity changed: before %+v, after %+v", before, after)
			}
			if after.IsLoading {
				t.Error("expected IsLoading to be reset")
			}
			if after.LastError == "" {
				t.Error("expected LastError to be set")
			}
		})
	}
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	auth := testutil.NewFakeAuthService()
	s := newStore(t, memstore.New(), auth)
	s.SetUser(service.User{ID: "u1"}, "tok-1")

	auth.LoginErr = errors.New("boom")
	s.Login(context.Background(), "a@b.co", "secret")

	got := s.State()
	if !got.IsAuthenticated || got.Token != "tok-1" || got.User.ID != "u1" {
		t.Errorf("expected session to survive failed login, got %+v", got)
	}
}

type panickingAuth struct{}

func (panickingAuth) Login(ctx context.Context, req service.LoginRequest) (service.LoginResponse, error) {
	panic("collaborator bug")
}

func (panickingAuth) Register(ctx context.Context, req service.RegisterRequest) (service.RegisterResponse, error) {
	panic("collaborator bug")
}

func TestLogin_PanicResetsLoading(t *testing.T) {
	s := newStore(t, memstore.New(), panickingAuth{})

	if s.Login(context.Background(), "a@b.co", "secret") {
		t.Fatal("expected false")
	}
	if s.State().IsLoading {
		t.Error("expected IsLoading to be reset after panic")
	}
	if s.Register(context.Background(), "Ann", "a@b.co", "secret") {
		t.Fatal("expected false")
	}
	if s.State().IsLoading {
		t.Error("expected IsLoading to be reset after panic")
	}
}

func TestLogin_LoadingWhileInFlight(t *testing.T) {
	auth := testutil.NewFakeAuthService()
	auth.AddAccount("u1", "Ann", "ann@example.com", "secret")
	auth.Block = make(chan struct{})
	s := newStore(t, memstore.New(), auth)

	loading := make(chan bool, 1)
	s.Subscribe(func(next, prev authstore.Session) {
		if next.IsLoading && !prev.IsLoading {
			loading <- true
		}
	})

	done := make(chan bool)
	go func() { done <- s.Login(context.Background(), "ann@example.com", "secret") }()

	select {
	case <-loading:
	case <-time.After(2 * time.Second):
		t.Fatal("IsLoading never became true")
	}
	if !s.State().IsLoading {
		t.Error("expected IsLoading during the call")
	}

	close(auth.Block)
	if !<-done {
		t.Fatal("expected login to succeed")
	}
	if s.State().IsLoading {
		t.Error("expected IsLoading to be reset")
	}
}

func TestRegister_ValidationSkipsRemote(t *testing.T) {
	auth := testutil.NewFakeAuthService()
	s := newStore(t, memstore.New(), auth)

	if s.Register(context.Background(), "A", "not-an-email", "123") {
		t.Fatal("expected registration to fail")
	}
	if auth.Calls() != 0 {
		t.Errorf("expected no remote calls, got %d", auth.Calls())
	}
	got := s.State()
	if got.IsLoading {
		t.Error("expected IsLoading to be reset")
	}
	if !strings.Contains(got.LastError, "Name") {
		t.Errorf("expected name validation message, got %q", got.LastError)
	}
}

func TestRegister_Success(t *testing.T) {
	auth := testutil.NewFakeAuthService()
	s := newStore(t, memstore.New(), auth)

	if !s.Register(context.Background(), "Ann", "ann@example.com", "secret") {
		t.Fatalf("expected registration to succeed: %q", s.State().LastError)
	}
	got := s.State()
	if got.IsAuthenticated || got.User != nil || got.Token != "" {
		t.Errorf("registration must not authenticate, got %+v", got)
	}
	if got.IsLoading {
		t.Error("expected IsLoading to be reset")
	}
	if auth.RegisterCalls != 1 {
		t.Errorf("expected 1 register call, got %d", auth.RegisterCalls)
	}
}

func TestRegister_MissingEmailInResponse(t *testing.T) {
	auth := testutil.NewFakeAuthService()
	auth.RegisterResponse = &service.RegisterResponse{}
	s := newStore(t, memstore.New(), auth)

	if s.Register(context.Background(), "Ann", "ann@example.com", "secret") {
		t.Fatal("expected registration to fail on missing email")
	}
}

func TestLogout(t *testing.T) {
	st := memstore.New()
	s := newStore(t, st, testutil.NewFakeAuthService())
	s.SetUser(service.User{ID: "u1"}, "tok")

	s.Logout()
	s.Logout()

	got := s.State()
	if got.IsAuthenticated || got.User != nil || got.Token != "" {
		t.Errorf("expected cleared session, got %+v", got)
	}
	if slot(t, st) != "" {
		t.Error("expected token slot to be cleared")
	}
}

func TestLogout_ClearsStaleSlot(t *testing.T) {
	st := memstore.New()
	st.Set(context.Background(), authstore.TokenKey, "stale")
	s := newStore(t, st, testutil.NewFakeAuthService())

	s.Logout()

	if slot(t, st) != "" {
		t.Error("expected stale slot to be removed")
	}
}

func TestSetUser(t *testing.T) {
	st := memstore.New()
	s := newStore(t, st, testutil.NewFakeAuthService())

	s.SetUser(service.User{ID: "u1", Name: "Ann"}, "tok-1")
	got := s.State()
	if !got.IsAuthenticated || got.Token != "tok-1" || got.User.Name != "Ann" {
		t.Errorf("unexpected state: %+v", got)
	}
	if slot(t, st) != "tok-1" {
		t.Errorf("expected slot tok-1, got %q", slot(t, st))
	}

	// Without a token the current one is kept.
	s.SetUser(service.User{ID: "u1", Name: "Ann B"}, "")
	got = s.State()
	if got.Token != "tok-1" || got.User.Name != "Ann B" {
		t.Errorf("unexpected state: %+v", got)
	}
}

func TestSetUser_AdoptsSlotToken(t *testing.T) {
	st := memstore.New()
	st.Set(context.Background(), authstore.TokenKey, "from-slot")
	s := newStore(t, st, testutil.NewFakeAuthService())

	s.SetUser(service.User{ID: "u1"}, "")

	if got := s.State().Token; got != "from-slot" {
		t.Errorf("expected slot token to be adopted, got %q", got)
	}
}

func TestVerifyToken(t *testing.T) {
	t.Run("no token anywhere resets", func(t *testing.T) {
		st := memstore.New()
		// Inconsistent snapshot: authenticated without a token.
		st.Set(context.Background(), authstore.StorageName,
			`{"state":{"user":{"id":"u1","name":"Ann","email":"a@b.co"},"isAuthenticated":true},"version":0}`)
		s := newStore(t, st, testutil.NewFakeAuthService())

		if !s.State().IsAuthenticated {
			t.Fatal("precondition: restored session should be authenticated")
		}
		s.VerifyToken()

		got := s.State()
		if got.IsAuthenticated || got.User != nil {
			t.Errorf("expected reset, got %+v", got)
		}
	})

	t.Run("slot token adopted", func(t *testing.T) {
		st := memstore.New()
		st.Set(context.Background(), authstore.TokenKey, "slot-tok")
		s := newStore(t, st, testutil.NewFakeAuthService())

		s.VerifyToken()

		if got := s.State().Token; got != "slot-tok" {
			t.Errorf("expected slot token, got %q", got)
		}
	})

	t.Run("memory token kept", func(t *testing.T) {
		st := memstore.New()
		s := newStore(t, st, testutil.NewFakeAuthService())
		s.SetUser(service.User{ID: "u1"}, "tok")
		st.Remove(context.Background(), authstore.TokenKey)

		s.VerifyToken()

		if !s.Authenticated() {
			t.Error("expected session to survive")
		}
	})
}

func TestPersistence_RoundTrip(t *testing.T) {
	st := memstore.New()
	auth := testutil.NewFakeAuthService()
	auth.AddAccount("u1", "Ann", "ann@example.com", "secret")

	s := newStore(t, st, auth)
	if !s.Login(context.Background(), "ann@example.com", "secret") {
		t.Fatal("login failed")
	}
	want := s.State()
	s.Close()

	raw, err := st.Get(context.Background(), authstore.StorageName)
	if err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	if strings.Contains(raw, "isLoading") || strings.Contains(raw, "LastError") {
		t.Errorf("snapshot must not contain transient fields: %s", raw)
	}

	restored := newStore(t, st, auth).State()
	if restored.Token != want.Token || !restored.IsAuthenticated || restored.User.ID != want.User.ID {
		t.Errorf("expected %+v, got %+v", want, restored)
	}
	if restored.IsLoading {
		t.Error("IsLoading must reset on restore")
	}
}

func TestPersistence_CorruptSnapshot(t *testing.T) {
	st := memstore.New()
	st.Set(context.Background(), authstore.StorageName, "{{{")

	got := newStore(t, st, testutil.NewFakeAuthService()).State()
	if got.IsAuthenticated || got.User != nil || got.Token != "" || got.IsLoading {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestPersistence_SnapshotFormat(t *testing.T) {
	st := memstore.New()
	s := newStore(t, st, testutil.NewFakeAuthService())
	s.SetUser(service.User{ID: "u1", Name: "Ann", Email: "ann@example.com"}, "tok-1")

	raw, err := st.Get(context.Background(), authstore.StorageName)
	if err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	testutil.GoldenJSON(t, "session", []byte(raw))
}

func TestPersistence_IncompleteSnapshotIsNotAuthenticated(t *testing.T) {
	tests := map[string]string{
		"no user":  `{"state":{"user":null,"token":"tok-1","isAuthenticated":true},"version":0}`,
		"no token": `{"state":{"user":{"id":"u1","name":"Ann","email":"ann@example.com"},"token":"","isAuthenticated":true},"version":0}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			st := memstore.New()
			st.Set(context.Background(), authstore.StorageName, raw)

			if got := newStore(t, st, testutil.NewFakeAuthService()).State(); got.IsAuthenticated {
				t.Errorf("expected IsAuthenticated false, got %+v", got)
			}
		})
	}
}

// slotWrites counts Set calls on the token slot.
type slotWrites struct {
	storage.Storage
	n int
}

func (w *slotWrites) Set(ctx context.Context, key, value string) error {
	if key == authstore.TokenKey {
		w.n++
	}
	return w.Storage.Set(ctx, key, value)
}

func TestTokenSlot_WrittenOncePerChange(t *testing.T) {
	st := &slotWrites{Storage: memstore.New()}
	auth := testutil.NewFakeAuthService()
	auth.AddAccount("u1", "Ann", "ann@example.com", "secret")
	s := newStore(t, st, auth)

	if !s.Login(context.Background(), "ann@example.com", "secret") {
		t.Fatal("login failed")
	}
	if st.n != 1 {
		t.Errorf("expected 1 slot write after login, got %d", st.n)
	}

	s.SetUser(service.User{ID: "u1", Name: "Ann"}, "tok-2")
	if st.n != 2 {
		t.Errorf("expected 2 slot writes after SetUser, got %d", st.n)
	}
	if slot(t, st) != "tok-2" {
		t.Errorf("expected slot tok-2, got %q", slot(t, st))
	}
}
