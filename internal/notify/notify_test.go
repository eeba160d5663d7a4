package notify

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtures() (*models.User, *models.User, *models.Project, *models.Invite) {
	owner := &models.User{ID: uuid.New(), Name: "Grace", Email: "grace@example.com"}
	dev := &models.User{ID: uuid.New(), Name: "", Email: "linus@example.com"}
	project := &models.Project{ID: uuid.New(), Title: "Voice for All", Creator: owner, CreatorID: owner.ID}
	inv := &models.Invite{
		ID: uuid.New(), SenderID: owner.ID, ReceiverID: dev.ID, ProjectID: project.ID,
		Role: "Backend", Status: models.InvitePending,
		Sender: owner, Receiver: dev, Project: project,
	}
	return owner, dev, project, inv
}

func TestPayloadBuilders(t *testing.T) {
	owner, dev, project, inv := fixtures()

	sent := InviteSent(inv, owner, dev, project)
	assert.Equal(t, EventInviteSent, sent.Event)
	assert.Equal(t, "linus@example.com", sent.To)
	assert.Equal(t, "linus@example.com", sent.RecipientName)
	assert.Equal(t, "Grace", sent.ActorName)

	responded := InviteResponded(inv, models.InviteAccepted)
	assert.Equal(t, "grace@example.com", responded.To)
	assert.Equal(t, "accepted", responded.Status)
	assert.Equal(t, dev.ID, responded.ActorID)

	interest := InterestShown(dev, project)
	assert.Equal(t, "grace@example.com", interest.To)
	assert.Equal(t, project.ID, interest.ProjectID)
}

func TestOutboxRoundTrip(t *testing.T) {
	owner, dev, project, inv := fixtures()
	row, ok := InviteSent(inv, owner, dev, project).Outbox("invite", inv.ID)
	require.True(t, ok)
	assert.Equal(t, models.KindEmail, row.Kind)
	assert.Equal(t, EventInviteSent, row.Op)

	p, err := DecodePayload(row.Payload)
	require.NoError(t, err)
	assert.Equal(t, "Backend", p.Role)

	_, ok = Payload{Event: EventInterestShown}.Outbox("project", project.ID)
	assert.False(t, ok, "payload without recipient must not be queued")

	_, err = DecodePayload([]byte(`{"event":"invite_sent"}`))
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	r, err := NewRenderer("https://hackollab.dev/")
	require.NoError(t, err)
	owner, dev, project, inv := fixtures()

	msg, err := r.Render(InviteSent(inv, owner, dev, project))
	require.NoError(t, err)
	assert.Equal(t, "linus@example.com", msg.To)
	assert.Equal(t, "You're invited to join Voice for All", msg.Subject)
	assert.Contains(t, msg.HTML, "https://hackollab.dev/invites")
	assert.Contains(t, msg.HTML, "Backend")

	msg, err = r.Render(InviteResponded(inv, models.InviteDeclined))
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "declined")
	assert.Contains(t, msg.HTML, "https://hackollab.dev/projects/"+project.ID.String())

	msg, err = r.Render(InterestShown(dev, project))
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "linus@example.com")

	_, err = r.Render(Payload{Event: "nope", To: "x@y.z"})
	assert.Error(t, err)
}

func TestRenderEscapesHTML(t *testing.T) {
	r, err := NewRenderer("http://localhost:5173")
	require.NoError(t, err)
	msg, err := r.Render(Payload{
		Event: EventInterestShown, To: "a@b.c",
		ActorName: "<script>alert(1)</script>", ProjectTitle: "p",
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), Message{To: "a@b.c"}))
}
