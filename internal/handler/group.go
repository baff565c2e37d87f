package handler

import (
	"net/http"

	"github.com/stemcapstone/smartgoals/internal/ctxkeys"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/service"
)

type GroupHandler struct {
	groupService   *service.GroupService
	projectService *service.ProjectService
}

func NewGroupHandler(groupService *service.GroupService, projectService *service.ProjectService) *GroupHandler {
	return &GroupHandler{
		groupService:   groupService,
		projectService: projectService,
	}
}

type groupDetail struct {
	*model.Group
	Members  []*model.GroupMember `json:"members"`
	Projects []*model.Project     `json:"projects"`
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groupService.Groups(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// Show returns a group with its roster and projects. Goals of the group are
// listed through /api/goals?group_id=.
func (h *GroupHandler) Show(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	id := r.PathValue("id")

	group, members, err := h.groupService.Roster(r.Context(), user, id)
	if err != nil {
		fail(w, r, err)
		return
	}

	projects, err := h.projectService.GroupProjects(r.Context(), user, id)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, groupDetail{Group: group, Members: members, Projects: projects})
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}

	group, err := h.groupService.Create(r.Context(), ctxkeys.User(r.Context()), req.Name)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// Join adds the caller to the group with the given join code.
func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	var in service.JoinInput
	if !decode(w, r, &in) {
		return
	}

	group, err := h.groupService.Join(r.Context(), ctxkeys.User(r.Context()), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *GroupHandler) Leave(w http.ResponseWriter, r *http.Request) {
	if err := h.groupService.Leave(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
