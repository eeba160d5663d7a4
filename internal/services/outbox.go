package services

import (
	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/elastic"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/notify"
)

const opUpsert = "UPSERT"

// indexEvent asks the outbox worker to re-project one row into the search
// index. A nil id is filled in by the store once the row exists.
func indexEvent(entityType string, id uuid.UUID) models.Outbox {
	return models.Outbox{
		Kind:       models.KindIndex,
		EntityType: entityType,
		EntityID:   id,
		Op:         opUpsert,
	}
}

// indexEvents re-projects a set of rows, e.g. every project of a user.
func indexEvents(entityType string, ids []uuid.UUID) []models.Outbox {
	out := make([]models.Outbox, 0, len(ids))
	for _, id := range ids {
		out = append(out, indexEvent(entityType, id))
	}
	return out
}

// emailEvents turns payloads into outbox rows, skipping those without a
// recipient.
func emailEvents(entityType string, entityID uuid.UUID, payloads ...notify.Payload) []models.Outbox {
	var out []models.Outbox
	for _, p := range payloads {
		if ob, ok := p.Outbox(entityType, entityID); ok {
			out = append(out, ob)
		}
	}
	return out
}

const (
	entityUser      = elastic.EntityUser
	entityProject   = elastic.EntityProject
	entityHackathon = elastic.EntityHackathon
	entityInvite    = "invite"
)
