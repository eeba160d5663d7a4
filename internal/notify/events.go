package notify

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
	"gorm.io/datatypes"
)

// Event names double as outbox ops and template names.
const (
	EventInviteSent      = "invite_sent"
	EventInviteResponded = "invite_responded"
	EventInterestShown   = "interest_shown"
)

// Payload is the outbox body of an email event.
type Payload struct {
	Event         string    `json:"event"`
	To            string    `json:"to"`
	RecipientName string    `json:"recipientName"`
	ActorID       uuid.UUID `json:"actorId"`
	ActorName     string    `json:"actorName"`
	ActorEmail    string    `json:"actorEmail,omitempty"`
	ProjectID     uuid.UUID `json:"projectId"`
	ProjectTitle  string    `json:"projectTitle"`
	InviteID      uuid.UUID `json:"inviteId,omitempty"`
	Role          string    `json:"role,omitempty"`
	Status        string    `json:"status,omitempty"`
}

// Outbox wraps p as an email outbox row. Rows without a recipient address
// are dropped, since there is no one to deliver to.
func (p Payload) Outbox(entityType string, entityID uuid.UUID) (models.Outbox, bool) {
	if p.To == "" {
		return models.Outbox{}, false
	}
	data, _ := json.Marshal(p)
	return models.Outbox{
		Kind:       models.KindEmail,
		EntityType: entityType,
		EntityID:   entityID,
		Op:         p.Event,
		Payload:    datatypes.JSON(data),
	}, true
}

func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("decode email payload: %w", err)
	}
	if p.To == "" {
		return Payload{}, fmt.Errorf("email payload has no recipient")
	}
	return p, nil
}

func displayName(u *models.User) string {
	if u == nil {
		return "Someone"
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "A H@ckollab user"
}

func InviteSent(inv *models.Invite, sender, receiver *models.User, project *models.Project) Payload {
	return Payload{
		Event:         EventInviteSent,
		To:            receiver.Email,
		RecipientName: displayName(receiver),
		ActorID:       sender.ID,
		ActorName:     displayName(sender),
		ActorEmail:    sender.Email,
		ProjectID:     project.ID,
		ProjectTitle:  project.Title,
		InviteID:      inv.ID,
		Role:          inv.Role,
		Status:        string(inv.Status),
	}
}

func InviteResponded(inv *models.Invite, status models.InviteStatus) Payload {
	p := Payload{
		Event:    EventInviteResponded,
		InviteID: inv.ID,
		Role:     inv.Role,
		Status:   string(status),
	}
	if inv.Sender != nil {
		p.To = inv.Sender.Email
		p.RecipientName = displayName(inv.Sender)
	}
	if inv.Receiver != nil {
		p.ActorID = inv.Receiver.ID
		p.ActorName = displayName(inv.Receiver)
		p.ActorEmail = inv.Receiver.Email
	}
	if inv.Project != nil {
		p.ProjectID = inv.Project.ID
		p.ProjectTitle = inv.Project.Title
	}
	return p
}

func InterestShown(user *models.User, project *models.Project) Payload {
	p := Payload{
		Event:        EventInterestShown,
		ActorID:      user.ID,
		ActorName:    displayName(user),
		ActorEmail:   user.Email,
		ProjectID:    project.ID,
		ProjectTitle: project.Title,
	}
	if project.Creator != nil {
		p.To = project.Creator.Email
		p.RecipientName = displayName(project.Creator)
	}
	return p
}
