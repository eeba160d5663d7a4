package elastic

import (
	"context"
	"fmt"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
)

const (
	IdxUsers      = "users_v1"
	IdxHackathons = "hackathons_v1"
	IdxProjects   = "projects_v1"
)

// Entity types as written to outbox rows.
const (
	EntityUser      = "user"
	EntityProject   = "project"
	EntityHackathon = "hackathon"
)

// IndexFor maps an outbox entity type to its index.
func IndexFor(entityType string) (string, bool) {
	switch entityType {
	case EntityUser:
		return IdxUsers, true
	case EntityProject:
		return IdxProjects, true
	case EntityHackathon:
		return IdxHackathons, true
	}
	return "", false
}

// IndexForSearch maps the search type parameter (plural) to its index.
func IndexForSearch(kind string) (string, bool) {
	return IndexFor(strings.TrimSuffix(kind, "s"))
}

var mappings = map[string]string{
	IdxUsers: `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"name":{"type":"text"},"email":{"type":"keyword"},"bio":{"type":"text"},
		"skills":{"type":"keyword"},"availability":{"type":"keyword"},
		"github_url":{"type":"keyword","index":false},"updated_at":{"type":"date"}
	}}}`,
	IdxHackathons: `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"title":{"type":"text"},"description":{"type":"text"},"location":{"type":"keyword"},
		"organizer":{"type":"text"},"event_mode":{"type":"keyword"},
		"tags":{"type":"keyword"},"tech_stack":{"type":"keyword"},
		"hackathon_date":{"type":"date"},"deadline":{"type":"date"},"updated_at":{"type":"date"}
	}}}`,
	IdxProjects: `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"title":{"type":"text"},"description":{"type":"text"},"creator_id":{"type":"keyword"},
		"tags":{"type":"keyword"},"tech_stack":{"type":"keyword"},"difficulty":{"type":"keyword"},
		"visibility":{"type":"keyword"},"status":{"type":"keyword"},"updated_at":{"type":"date"}
	}}}`,
}

func EnsureIndexes(ctx context.Context, c *es.Client) error {
	for _, idx := range []string{IdxUsers, IdxHackathons, IdxProjects} {
		if err := ensure(ctx, c, idx, mappings[idx]); err != nil {
			return err
		}
	}
	return nil
}

func ensure(ctx context.Context, c *es.Client, index, body string) error {
	exists, err := c.Indices.Exists([]string{index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	if exists.Body != nil {
		exists.Body.Close()
	}
	if exists.StatusCode == 200 {
		return nil
	}
	res, err := c.Indices.Create(index, c.Indices.Create.WithBody(strings.NewReader(body)), c.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %s: %s", index, res.String())
	}
	return nil
}
