package handlers

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirdesai22/hackollab/internal/auth"
	"github.com/sirdesai22/hackollab/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t       *testing.T
	st      *storetest.Memory
	signer  *auth.HMACVerifier
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	st := storetest.New()
	signer := auth.NewHMACVerifier("secret", auth.ProviderClerk)
	return &testAPI{
		t:      t,
		st:     st,
		signer: signer,
		handler: Router(RouterOptions{
			Store:    st,
			Verifier: signer,
			Logger:   zerolog.Nop(),
			Metrics:  http.NotFoundHandler(),
		}),
	}
}

func (a *testAPI) token(subject, email string) string {
	tok, err := a.signer.Sign(subject, email, subject, time.Hour)
	require.NoError(a.t, err)
	return tok
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decodeBody[errorBody](t, rec).Error
}

// me resolves the caller behind tok through an authenticated request.
func (a *testAPI) me(tok string) map[string]any {
	rec := a.do(http.MethodPut, "/api/users/me", tok, map[string]any{})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[map[string]any](a.t, rec)
}

func (a *testAPI) createProject(tok string, body map[string]any) map[string]any {
	if _, ok := body["collaborationType"]; !ok {
		body["collaborationType"] = "Remote"
	}
	rec := a.do(http.MethodPost, "/api/projects", tok, body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[map[string]any](a.t, rec)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rec)["status"])

	api.st.Err = driver.ErrBadConn
	rec = api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "database unreachable", body["error"])
}

func TestDatabaseDownOnRoute(t *testing.T) {
	api := newTestAPI(t)
	api.st.Err = driver.ErrBadConn
	rec := api.do(http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database unreachable", errorOf(t, rec))
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", errorOf(t, rec))
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	api := newTestAPI(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/projects"},
		{http.MethodPost, "/api/hackathons"},
		{http.MethodPost, "/api/interests"},
		{http.MethodPost, "/api/invites"},
		{http.MethodPost, "/api/invites/bulk"},
		{http.MethodPut, "/api/users/me"},
		{http.MethodPost, "/api/users"},
	} {
		rec := api.do(tc.method, tc.path, "", map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}

	rec := api.do(http.MethodPost, "/api/projects", "not-a-jwt", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", errorOf(t, rec))
}

func TestUpsertAndGetUser(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token("user_1", "ada@example.com")
	rec := api.do(http.MethodPost, "/api/users", tok, map[string]any{
		"clerkId": "user_1", "email": "ada@example.com", "name": "Ada",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)

	rec = api.do(http.MethodGet, "/api/users/"+created["id"].(string), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Ada", got["name"])
	assert.Equal(t, []any{}, got["skills"])

	rec = api.do(http.MethodPost, "/api/users", tok, map[string]any{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/users/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpsertUserCannotTakeOverAnotherAccount(t *testing.T) {
	api := newTestAPI(t)
	victimTok := api.token("victim", "victim@example.com")
	rec := api.do(http.MethodPost, "/api/users", victimTok, map[string]any{
		"clerkId": "victim", "email": "victim@example.com", "name": "Victim",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	victim := decodeBody[map[string]any](t, rec)

	attacker := api.token("attacker", "attacker@example.com")
	rec = api.do(http.MethodPost, "/api/users", attacker, map[string]any{
		"clerkId": "attacker", "firebaseUid": "attacker-fb", "email": "victim@example.com",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/users", attacker, map[string]any{
		"clerkId": "victim", "email": "victim@example.com", "name": "Owned",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/users", attacker, map[string]any{
		"clerkId": "attacker", "email": "victim@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email is already linked to another account", errorOf(t, rec))

	// A first login carrying the victim's email is refused too.
	rec = api.do(http.MethodPut, "/api/users/me", api.token("other", "victim@example.com"), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/users/"+victim["id"].(string), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Victim", got["name"])
	assert.Equal(t, "victim", got["clerkId"])
	assert.NotContains(t, got, "firebaseUid")
}

func TestUpdateMeReplacesSkills(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token("user_1", "ada@example.com")
	rec := api.do(http.MethodPut, "/api/users/me", tok, map[string]any{
		"bio":    "compilers",
		"skills": []map[string]string{{"name": "Go", "level": "Advanced"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "compilers", got["bio"])
	assert.Equal(t, []any{map[string]any{"name": "Go", "level": "Advanced"}}, got["skills"])
}

func TestInvalidBody(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token("user_1", "ada@example.com")
	rec := api.do(http.MethodPost, "/api/projects", tok, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", errorOf(t, rec))
}

func TestProjectsListAndFilter(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token("user_1", "ada@example.com")
	api.createProject(tok, map[string]any{"title": "Easy", "difficulty": "Beginner", "techStack": []string{"Go"}})
	api.createProject(tok, map[string]any{"title": "Hard", "difficulty": "Advanced", "techStack": "React, Node"})

	rec := api.do(http.MethodGet, "/api/projects?difficulty=Advanced", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Hard", list[0]["title"])
	assert.Equal(t, []any{"React", "Node"}, list[0]["techStack"])
	assert.NotNil(t, list[0]["creator"])

	rec = api.do(http.MethodGet, "/api/projects?tech=Go", "", nil)
	list = decodeBody[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Easy", list[0]["title"])

	rec = api.do(http.MethodPost, "/api/projects", tok, map[string]any{"title": "No type"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "collaborationType is required", errorOf(t, rec))
}

func TestProjectDetailAndOwnerPatch(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token("owner", "owner@example.com")
	other := api.token("other", "other@example.com")
	p := api.createProject(owner, map[string]any{"title": "Mine"})
	id := p["id"].(string)

	rec := api.do(http.MethodGet, "/api/projects/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeBody[map[string]any](t, rec)
	assert.Equal(t, []any{}, detail["interestedUsers"])
	assert.Equal(t, []any{}, detail["collaborators"])

	rec = api.do(http.MethodPatch, "/api/projects/"+id, other, map[string]any{"inviteStatus": "Closed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPatch, "/api/projects/"+id, owner, map[string]any{"inviteStatus": "Closed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Closed", decodeBody[map[string]any](t, rec)["inviteStatus"])

	rec = api.do(http.MethodGet, "/api/projects/my-projects/owner", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)
}

func TestInterestFlow(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token("owner", "owner@example.com")
	dev := api.token("dev", "dev@example.com")
	p := api.createProject(owner, map[string]any{"title": "Voice"})
	devID := api.me(dev)["id"].(string)
	ownerID := api.me(owner)["id"].(string)

	body := map[string]any{"userId": devID, "projectId": p["id"]}
	rec := api.do(http.MethodPost, "/api/interests", dev, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Interest expressed successfully", decodeBody[map[string]any](t, rec)["message"])

	rec = api.do(http.MethodPost, "/api/interests", dev, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You have already expressed interest in this project", errorOf(t, rec))

	rec = api.do(http.MethodPost, "/api/interests", dev, map[string]any{"userId": ownerID, "projectId": p["id"]})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodGet, "/api/interests/user/"+devID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)
}

func TestHackathonRoundsRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	tok := api.token("org", "org@example.com")

	rec := api.do(http.MethodPost, "/api/hackathons", tok, map[string]any{
		"title": "HackNight", "rounds": []string{"Ideation, phase 1", "Finals"}, "deadline": "",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	assert.Equal(t, []any{"Ideation, phase 1", "Finals"}, created["rounds"])

	rec = api.do(http.MethodPost, "/api/hackathons", tok, map[string]any{
		"title": "Legacy", "rounds": "Screening,Demo", "hackathonDate": "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []any{"Screening", "Demo"}, decodeBody[map[string]any](t, rec)["rounds"])

	rec = api.do(http.MethodGet, "/api/hackathons/"+created["id"].(string), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Ideation, phase 1", "Finals"}, decodeBody[map[string]any](t, rec)["rounds"])

	rec = api.do(http.MethodGet, "/api/hackathons", "", nil)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 2)
}

func TestInviteFlow(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token("owner", "owner@example.com")
	dev := api.token("dev", "dev@example.com")
	p := api.createProject(owner, map[string]any{"title": "Voice"})
	ownerID := api.me(owner)["id"].(string)
	devID := api.me(dev)["id"].(string)

	rec := api.do(http.MethodPost, "/api/invites", owner, map[string]any{
		"senderId": ownerID, "receiverId": devID, "projectId": p["id"], "role": "Backend",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "pending", inv["status"])
	inviteID := inv["id"].(string)

	rec = api.do(http.MethodGet, "/api/invites/received?userId="+devID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	received := decodeBody[[]map[string]any](t, rec)
	require.Len(t, received, 1)
	assert.Equal(t, "owner@example.com", received[0]["sender"].(map[string]any)["email"])

	rec = api.do(http.MethodPatch, "/api/invites/"+inviteID, owner, map[string]any{"status": "accepted"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPatch, "/api/invites/"+inviteID, dev, map[string]any{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPatch, "/api/invites/"+inviteID, dev, map[string]any{"status": "accepted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "accepted", decodeBody[map[string]any](t, rec)["status"])

	rec = api.do(http.MethodPatch, "/api/invites/"+inviteID, dev, map[string]any{"status": "declined"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/projects/"+p["id"].(string), "", nil)
	collaborators := decodeBody[map[string]any](t, rec)["collaborators"].([]any)
	require.Len(t, collaborators, 1)
	assert.Equal(t, devID, collaborators[0].(map[string]any)["id"])

	for _, path := range []string{
		"/api/invites/sent/" + ownerID,
		"/api/invites/project/" + p["id"].(string),
		"/api/invites/user/dev",
	} {
		rec = api.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Len(t, decodeBody[[]map[string]any](t, rec), 1, path)
	}
}

func TestBulkInvite(t *testing.T) {
	api := newTestAPI(t)
	owner := api.token("owner", "owner@example.com")
	p := api.createProject(owner, map[string]any{"title": "Voice"})
	a := api.me(api.token("a", "a@example.com"))["id"].(string)
	b := api.me(api.token("b", "b@example.com"))["id"].(string)

	for _, userIDs := range []any{[]string{}, "not-a-list", nil} {
		rec := api.do(http.MethodPost, "/api/invites/bulk", owner, map[string]any{
			"projectId": p["id"], "userIds": userIDs, "role": "Dev",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No users selected for invite", errorOf(t, rec))
	}

	rec := api.do(http.MethodPost, "/api/invites/bulk", owner, map[string]any{
		"projectId": p["id"], "userIds": []string{a, b}, "role": "Dev",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody[map[string]any](t, rec)
	assert.EqualValues(t, 2, body["count"])
	assert.Len(t, body["invites"], 2)
}

func TestSearchDisabled(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/search?q=go", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSCredentialsNeedExplicitOrigins(t *testing.T) {
	get := func(origins []string, origin string) http.Header {
		h := Router(RouterOptions{
			Store:          storetest.New(),
			Logger:         zerolog.Nop(),
			Metrics:        http.NotFoundHandler(),
			AllowedOrigins: origins,
		})
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Header()
	}

	hdr := get(nil, "https://evil.example")
	assert.Equal(t, "*", hdr.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, hdr.Get("Access-Control-Allow-Credentials"))

	hdr = get([]string{"https://app.example", "*"}, "https://evil.example")
	assert.Empty(t, hdr.Get("Access-Control-Allow-Credentials"))

	hdr = get([]string{"https://app.example"}, "https://app.example")
	assert.Equal(t, "https://app.example", hdr.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", hdr.Get("Access-Control-Allow-Credentials"))

	hdr = get([]string{"https://app.example"}, "https://evil.example")
	assert.Empty(t, hdr.Get("Access-Control-Allow-Origin"))
}

func TestRecoverer(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	recoverer(false)(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", errorOf(t, rec))

	rec = httptest.NewRecorder()
	recoverer(true)(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "Internal server error", errorOf(t, rec))
}
