package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirdesai22/hackollab/internal/apperr"
	"github.com/sirdesai22/hackollab/internal/auth"
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/notify"
	"github.com/sirdesai22/hackollab/internal/store"
)

type Invites struct {
	store store.Store
	users *Users
}

func NewInvites(st store.Store, users *Users) *Invites {
	return &Invites{store: st, users: users}
}

type SendInviteInput struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	ProjectID  string `json:"projectId"`
	Role       string `json:"role"`
}

type BulkInviteInput struct {
	ProjectID string   `json:"projectId"`
	UserIDs   []string `json:"userIds"`
	Role      string   `json:"role"`
}

// ownedProject loads a project and checks the caller owns it.
func (s *Invites) ownedProject(ctx context.Context, caller *models.User, projectID string) (*models.Project, error) {
	pid, err := parseID(projectID, "Project not found")
	if err != nil {
		return nil, err
	}
	project, err := s.store.GetProject(ctx, pid)
	if err != nil {
		return nil, storeErr(err, "Project not found")
	}
	if project.CreatorID != caller.ID {
		return nil, apperr.Forbidden("Only the project owner can send invites")
	}
	return project, nil
}

func (s *Invites) receiver(ctx context.Context, caller *models.User, id string) (*models.User, error) {
	rid, err := parseID(id, "Receiver not found")
	if err != nil {
		return nil, err
	}
	if rid == caller.ID {
		return nil, apperr.Validation("You cannot invite yourself")
	}
	u, err := s.store.GetUser(ctx, rid)
	if err != nil {
		return nil, storeErr(err, "Receiver not found")
	}
	return u, nil
}

func newInvite(sender, receiver *models.User, project *models.Project, role string) *models.Invite {
	return &models.Invite{
		ID:         uuid.New(),
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		ProjectID:  project.ID,
		Role:       role,
		Status:     models.InvitePending,
		Sender:     sender,
		Receiver:   receiver,
		Project:    project,
	}
}

// Send invites one user to a role on the caller's project. Repeated
// invites to the same user are allowed and each one is emailed.
func (s *Invites) Send(ctx context.Context, p *auth.Principal, in SendInviteInput) (*models.Invite, error) {
	caller, err := s.users.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if sid := strings.TrimSpace(in.SenderID); sid != "" && sid != caller.ID.String() {
		return nil, apperr.Forbidden("senderId does not match the authenticated user")
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		return nil, apperr.Validation("role is required")
	}
	receiver, err := s.receiver(ctx, caller, in.ReceiverID)
	if err != nil {
		return nil, err
	}
	project, err := s.ownedProject(ctx, caller, in.ProjectID)
	if err != nil {
		return nil, err
	}

	inv := newInvite(caller, receiver, project, role)
	events := emailEvents(entityInvite, inv.ID, notify.InviteSent(inv, caller, receiver, project))
	if err := s.store.CreateInvites(ctx, []*models.Invite{inv}, events...); err != nil {
		return nil, storeErr(err, "Project not found")
	}
	return inv, nil
}

// Bulk invites several users at once. Either every invite is created or
// none is.
func (s *Invites) Bulk(ctx context.Context, p *auth.Principal, in BulkInviteInput) ([]*models.Invite, error) {
	if len(in.UserIDs) == 0 {
		return nil, apperr.Validation("No users selected for invite")
	}
	caller, err := s.users.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	role := strings.TrimSpace(in.Role)
	if role == "" {
		return nil, apperr.Validation("role is required")
	}
	project, err := s.ownedProject(ctx, caller, in.ProjectID)
	if err != nil {
		return nil, err
	}

	var (
		invites []*models.Invite
		events  []models.Outbox
	)
	for _, id := range normalizeSet(in.UserIDs) {
		receiver, err := s.receiver(ctx, caller, id)
		if err != nil {
			return nil, err
		}
		inv := newInvite(caller, receiver, project, role)
		invites = append(invites, inv)
		events = append(events, emailEvents(entityInvite, inv.ID, notify.InviteSent(inv, caller, receiver, project))...)
	}
	if len(invites) == 0 {
		return nil, apperr.Validation("No users selected for invite")
	}
	if err := s.store.CreateInvites(ctx, invites, events...); err != nil {
		return nil, storeErr(err, "Project not found")
	}
	return invites, nil
}

func parseStatus(raw string) (models.InviteStatus, error) {
	switch st := models.InviteStatus(strings.ToLower(strings.TrimSpace(raw))); st {
	case models.InviteAccepted, models.InviteDeclined:
		return st, nil
	}
	return "", apperr.Validation("status must be 'accepted' or 'declined'")
}

// Respond answers a pending invite. Only its receiver may respond, and only
// once; acceptance attaches the receiver to the project's collaborators.
func (s *Invites) Respond(ctx context.Context, p *auth.Principal, inviteID, status string) (*models.Invite, error) {
	iid, err := parseID(inviteID, "Invite not found")
	if err != nil {
		return nil, err
	}
	inv, err := s.store.GetInvite(ctx, iid)
	if err != nil {
		return nil, storeErr(err, "Invite not found")
	}
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	caller, err := s.users.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if inv.ReceiverID != caller.ID {
		return nil, apperr.Forbidden("Only the invited user can respond to this invite")
	}
	if inv.Status.Terminal() {
		return nil, apperr.Conflict("Invite has already been responded to")
	}

	events := emailEvents(entityInvite, inv.ID, notify.InviteResponded(inv, st))
	updated, err := s.store.RespondToInvite(ctx, inv.ID, st, events...)
	if err != nil {
		return nil, storeErr(err, "Invite not found")
	}
	return updated, nil
}

func (s *Invites) list(ctx context.Context, f store.InviteFilter) ([]models.Invite, error) {
	out, err := s.store.ListInvites(ctx, f)
	if err != nil {
		return nil, storeErr(err, "")
	}
	return out, nil
}

// Received lists invites addressed to userID.
func (s *Invites) Received(ctx context.Context, userID string) ([]models.Invite, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("userId is required")
	}
	id, err := parseID(userID, "User not found")
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.InviteFilter{ReceiverID: &id})
}

func (s *Invites) Sent(ctx context.Context, senderID string) ([]models.Invite, error) {
	id, err := parseID(senderID, "User not found")
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.InviteFilter{SenderID: &id})
}

func (s *Invites) ForProject(ctx context.Context, projectID string) ([]models.Invite, error) {
	id, err := parseID(projectID, "Project not found")
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.InviteFilter{ProjectID: &id})
}

// ReceivedByExternalID lists invites for the user with the given
// firebaseUid or clerkId.
func (s *Invites) ReceivedByExternalID(ctx context.Context, externalID string) ([]models.Invite, error) {
	u, err := s.users.ByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.InviteFilter{ReceiverID: &u.ID})
}
