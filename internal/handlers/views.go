package handlers

import (
	"github.com/sirdesai22/hackollab/internal/models"
	"github.com/sirdesai22/hackollab/internal/store"
)

type userView struct {
	models.User
	Skills []store.SkillLevel `json:"skills"`
}

func newUserView(u models.User) userView {
	skills := make([]store.SkillLevel, 0, len(u.Skills))
	for _, s := range u.Skills {
		skills = append(skills, store.SkillLevel{Name: s.Skill.Name, Level: s.Level})
	}
	return userView{User: u, Skills: skills}
}

func newUserViews(users []models.User) []userView {
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, newUserView(u))
	}
	return out
}

func summary(u *models.User) *models.UserSummary {
	if u == nil {
		return nil
	}
	s := u.Summary()
	return &s
}

func summaries(users []models.User) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out
}

// projectView is a listing entry: the project plus its creator.
type projectView struct {
	models.Project
	Creator *models.UserSummary `json:"creator,omitempty"`
}

func newProjectViews(projects []models.Project) []projectView {
	out := make([]projectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectView{Project: p, Creator: summary(p.Creator)})
	}
	return out
}

type projectDetail struct {
	models.Project
	Creator         *models.UserSummary  `json:"creator,omitempty"`
	InterestedUsers []models.UserSummary `json:"interestedUsers"`
	Collaborators   []models.UserSummary `json:"collaborators"`
}

func newProjectDetail(p *models.Project) projectDetail {
	return projectDetail{
		Project:         *p,
		Creator:         summary(p.Creator),
		InterestedUsers: summaries(p.InterestedUsers),
		Collaborators:   summaries(p.Collaborators),
	}
}

func newProjectDetails(projects []models.Project) []projectDetail {
	out := make([]projectDetail, 0, len(projects))
	for i := range projects {
		out = append(out, newProjectDetail(&projects[i]))
	}
	return out
}

type inviteView struct {
	models.Invite
	Project  *models.Project     `json:"project,omitempty"`
	Sender   *models.UserSummary `json:"sender,omitempty"`
	Receiver *models.UserSummary `json:"receiver,omitempty"`
}

func newInviteView(inv *models.Invite) inviteView {
	return inviteView{
		Invite:   *inv,
		Project:  inv.Project,
		Sender:   summary(inv.Sender),
		Receiver: summary(inv.Receiver),
	}
}

func newInviteViews(invites []models.Invite) []inviteView {
	out := make([]inviteView, 0, len(invites))
	for i := range invites {
		out = append(out, newInviteView(&invites[i]))
	}
	return out
}
