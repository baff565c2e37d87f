package handler

import (
	"net/http"

	"github.com/stemcapstone/smartgoals/internal/ctxkeys"
	"github.com/stemcapstone/smartgoals/internal/service"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.Projects(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.ProjectInput
	if !decode(w, r, &in) {
		return
	}

	project, err := h.projectService.Create(r.Context(), ctxkeys.User(r.Context()), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Show(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.Accessible(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}

	err := h.projectService.SetStatus(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) Comments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.projectService.Comments(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (h *ProjectHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if !decode(w, r, &in) {
		return
	}

	comment, err := h.projectService.AddComment(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
