package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/stemcapstone/smartgoals/internal/ctxkeys"
	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/service"
)

type GoalHandler struct {
	sessions    *service.Sessions
	goalService *service.GoalService
}

func NewGoalHandler(sessions *service.Sessions, goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		sessions:    sessions,
		goalService: goalService,
	}
}

type goalResponse struct {
	Goal      *model.Goal      `json:"goal"`
	Bucket    lifecycle.Bucket `json:"bucket"`
	SyncError string           `json:"sync_error,omitempty"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

type progressRequest struct {
	Progress *float64 `json:"progress"`
}

// board returns the caller's board. RequireAuth guarantees a user.
func (h *GoalHandler) board(w http.ResponseWriter, r *http.Request) (*service.Board, bool) {
	b, err := h.sessions.Board(r.Context(), ctxkeys.User(r.Context()))
	if err != nil {
		fail(w, r, err)
		return nil, false
	}
	return b, true
}

func (h *GoalHandler) respond(w http.ResponseWriter, status int, b *service.Board, g *model.Goal) {
	resp := goalResponse{Goal: g, Bucket: b.Classify(g)}
	if err := b.SyncError(g.ID); err != nil {
		resp.SyncError = err.Error()
	}
	writeJSON(w, status, resp)
}

// List returns the caller's goals in todo, doing and done order.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.GoalFilter{
		Status:    model.ApprovalStatus(q.Get("status")),
		ProjectID: q.Get("project_id"),
		GroupID:   q.Get("group_id"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		fail(w, r, lifecycle.NewValidationError(nil, lifecycle.FieldError{
			Field: "status",
			Error: "must be one of pending, approved, rejected",
		}))
		return
	}

	b, ok := h.board(w, r)
	if !ok {
		return
	}

	buckets, err := b.Load(r.Context(), filter)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, buckets)
}

func (h *GoalHandler) Show(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}

	g, err := b.Goal(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, b, g)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var in service.GoalInput
	if !decode(w, r, &in) {
		return
	}

	b, ok := h.board(w, r)
	if !ok {
		return
	}

	g, err := h.goalService.Create(r.Context(), user, in)
	if err != nil {
		fail(w, r, err)
		return
	}

	slog.Info("goal created", "goal_id", g.ID, "user_id", user.ID)
	h.respond(w, http.StatusCreated, b, g)
}

// Update edits the goal's SMART content. Approved goals are locked for
// their owner.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var patch service.GoalPatch
	if !decode(w, r, &patch) {
		return
	}

	changes, err := h.goalService.Changes(r.Context(), user, patch)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.apply(w, r, func(b *service.Board, id string) (*model.Goal, error) {
		return b.Edit(r.Context(), id, changes)
	})
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}

	if err := b.Delete(r.Context(), r.PathValue("id")); err != nil {
		fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// apply runs a board transition on the goal named in the path and writes
// the updated goal.
func (h *GoalHandler) apply(w http.ResponseWriter, r *http.Request, op func(*service.Board, string) (*model.Goal, error)) {
	b, ok := h.board(w, r)
	if !ok {
		return
	}

	g, err := op(b, r.PathValue("id"))
	if err != nil {
		fail(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, b, g)
}

func (h *GoalHandler) StartEarly(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(b *service.Board, id string) (*model.Goal, error) {
		return b.StartEarly(r.Context(), id)
	})
}

func (h *GoalHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(b *service.Board, id string) (*model.Goal, error) {
		return b.Postpone(r.Context(), id)
	})
}

func (h *GoalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decode(w, r, &req) {
		return
	}
	h.apply(w, r, func(b *service.Board, id string) (*model.Goal, error) {
		return b.Approve(r.Context(), id, req.Feedback)
	})
}

func (h *GoalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decode(w, r, &req) {
		return
	}
	h.apply(w, r, func(b *service.Board, id string) (*model.Goal, error) {
		return b.Reject(r.Context(), id, req.Feedback)
	})
}

// UpdateProgress applies the new value right away and queues the write.
// Rapid updates collapse into one store write.
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Progress == nil {
		fail(w, r, lifecycle.NewValidationError(nil, lifecycle.FieldError{Field: "progress", Error: "this field is required"}))
		return
	}

	b, ok := h.board(w, r)
	if !ok {
		return
	}

	g, err := b.QueueProgress(r.Context(), r.PathValue("id"), *req.Progress)
	if err != nil {
		fail(w, r, err)
		return
	}

	h.respond(w, http.StatusAccepted, b, g)
}

func (h *GoalHandler) MarkAchieved(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(b *service.Board, id string) (*model.Goal, error) {
		return b.MarkAchieved(r.Context(), id)
	})
}

func (h *GoalHandler) UnmarkAchieved(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(b *service.Board, id string) (*model.Goal, error) {
		return b.UnmarkAchieved(r.Context(), id)
	})
}

// Export downloads every goal the caller owns as JSON.
func (h *GoalHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.Export(r.Context(), user)
	if err != nil {
		fail(w, r, err)
		return
	}

	filename := fmt.Sprintf("goals-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	writeJSON(w, http.StatusOK, goals)
}
