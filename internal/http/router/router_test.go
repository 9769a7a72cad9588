package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/turnero/internal/cache"
	"github.com/dropDatabas3/turnero/internal/domain/repository"
	authctrl "github.com/dropDatabas3/turnero/internal/http/controllers/auth"
	membersctrl "github.com/dropDatabas3/turnero/internal/http/controllers/members"
	rotationctrl "github.com/dropDatabas3/turnero/internal/http/controllers/rotation"
	mw "github.com/dropDatabas3/turnero/internal/http/middlewares"
	authsvc "github.com/dropDatabas3/turnero/internal/http/services/auth"
	memberssvc "github.com/dropDatabas3/turnero/internal/http/services/members"
	rotationsvc "github.com/dropDatabas3/turnero/internal/http/services/rotation"
	jwtx "github.com/dropDatabas3/turnero/internal/jwt"
	"github.com/dropDatabas3/turnero/internal/rotation/scopelock"
	"github.com/dropDatabas3/turnero/internal/security/password"
	"github.com/dropDatabas3/turnero/internal/store/adapters/memory"
)

type discardSender struct{}

func (discardSender) Send(_, _, _, _ string) error { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	st := memory.New()

	issuer, err := jwtx.NewIssuer("test-secret-0123456789", "turnero", time.Hour)
	require.NoError(t, err)

	authService := authsvc.NewService(authsvc.Deps{
		Tenants: st.Tenants(),
		Cache:   cache.NewMemory(""),
		Sender:  discardSender{},
		Issuer:  issuer,
		OTPTTL:  time.Minute,
	})
	membersService := memberssvc.NewService(st.Members())
	rotationService := rotationsvc.NewService(rotationsvc.Deps{
		Rotation:      st.Rotation(),
		Members:       st.Members(),
		Tenants:       st.Tenants(),
		Locks:         scopelock.New(),
		LockTimeout:   time.Second,
		LedgerRetries: 3,
	})

	h := New(Deps{
		Auth:        authctrl.NewController(authService),
		Members:     membersctrl.NewController(membersService),
		Rotation:    rotationctrl.NewController(rotationService),
		RequireAuth: mw.RequireAuth(issuer),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, st
}

func seedTenant(t *testing.T, st *memory.Store, email, pass string) *repository.Tenant {
	t.Helper()
	phc, err := password.Hash(password.Default, pass)
	require.NoError(t, err)
	tn, err := st.Tenants().Create(context.Background(), repository.CreateTenantInput{
		Name: "Inst", Email: email, PasswordHash: phc,
	})
	require.NoError(t, err)
	return tn
}

func postJSON(t *testing.T, url, token string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/members")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/members", nil)
	req.Header.Set("Authorization", "Bearer basura")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestFullFlow_LoginMembersGenerateHistory(t *testing.T) {
	srv, st := newTestServer(t)
	seedTenant(t, st, "inst@example.com", "pw-correcta")

	// login
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	resp := postJSON(t, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "inst@example.com", "password": "pw-correcta",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &tok)
	require.NotEmpty(t, tok.AccessToken)

	// alta de miembros
	for _, m := range []map[string]string{
		{"name": "Ana", "email": "ana@x.com", "group": "g1"},
		{"name": "Bruno", "email": "bruno@x.com", "group": "g1"},
	} {
		resp := postJSON(t, srv.URL+"/api/members", tok.AccessToken, m)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	// generate
	var gen struct {
		Round       int `json:"round"`
		Assignments []struct {
			MemberName string `json:"member_name"`
			Role       string `json:"role"`
		} `json:"assignments"`
		Skipped []struct {
			Role string `json:"role"`
		} `json:"skipped"`
	}
	resp = postJSON(t, srv.URL+"/api/rotation/generate", tok.AccessToken, map[string]any{
		"scope": "ALL",
		"roles": []map[string]any{{"name": "Host", "count": 1}, {"name": "News", "count": 1}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &gen)
	assert.Equal(t, 1, gen.Round)
	assert.Len(t, gen.Assignments, 2)

	// history
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/history?limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var hist struct {
		Entries []struct {
			Round int    `json:"round"`
			Scope string `json:"scope"`
		} `json:"entries"`
	}
	decode(t, resp2, &hist)
	require.Len(t, hist.Entries, 1)
	assert.Equal(t, 1, hist.Entries[0].Round)
	assert.Equal(t, "ALL", hist.Entries[0].Scope)
}

func TestGenerate_ErrorMapping(t *testing.T) {
	srv, st := newTestServer(t)
	seedTenant(t, st, "inst@example.com", "pw")

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	resp := postJSON(t, srv.URL+"/api/auth/login", "", map[string]string{
		"email": "inst@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &tok)

	// pool vacío → 400 EMPTY_POOL
	resp = postJSON(t, srv.URL+"/api/rotation/generate", tok.AccessToken, map[string]any{
		"scope": "ALL",
		"roles": []map[string]any{{"name": "Host", "count": 1}},
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var appErr struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&appErr))
	assert.Equal(t, "EMPTY_POOL", appErr.Code)
}
