package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDocs(t *testing.T) {
	u := models.User{
		Name: "Ada", Email: "ada@example.com",
		Skills: []models.UserSkill{{Level: "expert", Skill: models.Skill{Name: "Go"}}},
	}
	raw, err := BuildUserDoc(u)
	require.NoError(t, err)
	var ud UserDoc
	require.NoError(t, json.Unmarshal(raw, &ud))
	assert.Equal(t, []string{"Go"}, ud.Skills)

	p := models.Project{CreatorID: uuid.New(), Title: "Voice", Difficulty: "Beginner"}
	raw, err = BuildProjectDoc(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(mustField(t, raw, "tags")))
	assert.Contains(t, string(raw), p.CreatorID.String())

	when := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	raw, err = BuildHackathonDoc(models.Hackathon{Title: "HackX", HackathonDate: &when, Tags: []string{"ai"}})
	require.NoError(t, err)
	assert.JSONEq(t, `["ai"]`, string(mustField(t, raw, "tags")))
	assert.JSONEq(t, `"2025-03-01T00:00:00Z"`, string(mustField(t, raw, "hackathon_date")))
}

func mustField(t *testing.T, raw []byte, field string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	v, ok := m[field]
	require.True(t, ok, "missing field %s", field)
	return v
}

func TestIndexFor(t *testing.T) {
	idx, ok := IndexForSearch("projects")
	assert.True(t, ok)
	assert.Equal(t, IdxProjects, idx)

	idx, ok = IndexFor(EntityHackathon)
	assert.True(t, ok)
	assert.Equal(t, IdxHackathons, idx)

	_, ok = IndexForSearch("invites")
	assert.False(t, ok)
}

func TestQuery(t *testing.T) {
	body, err := Query(IdxUsers, "golang", 10)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"multi_match"`)
	assert.Contains(t, string(body), `"skills^2"`)

	body, err = Query(IdxProjects, "", 5)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"match_all"`)

	_, err = Query("nope", "x", 1)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects_v1/_search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "voice")
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":1},"hits":[
			{"_id":"p1","_score":1.5,"_source":{"title":"Voice for All"}}]}}`)
	}))
	defer srv.Close()

	client, err := es.NewClient(es.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	s := &Searcher{ES: client}

	res, err := s.Search(context.Background(), "projects", "voice", 10)
	require.NoError(t, err)
	assert.Equal(t, "projects", res.Type)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "p1", res.Hits[0].ID)
	assert.InDelta(t, 1.5, res.Hits[0].Score, 0.001)
	assert.JSONEq(t, `{"title":"Voice for All"}`, string(res.Hits[0].Source))

	_, err = s.Search(context.Background(), "invites", "x", 10)
	assert.ErrorIs(t, err, ErrUnknownType)
}
