package routes

import (
	"net/http"

	"github.com/stemcapstone/smartgoals/internal/app"
	"github.com/stemcapstone/smartgoals/internal/handler"
	"github.com/stemcapstone/smartgoals/internal/middleware"
)

// SetupRoutes builds the API handler. The join rate limiter's sweeper
// stops when stop is closed.
func SetupRoutes(app *app.App, stop <-chan struct{}) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.Sessions, app.GoalService)
	project := handler.NewProjectHandler(app.ProjectService)
	group := handler.NewGroupHandler(app.GroupService, app.ProjectService)
	resource := handler.NewResourceHandler(app.ResourceService)

	auth := middleware.RequireAuth
	teacher := middleware.RequireTeacher
	joinLimit := middleware.RateLimit(middleware.NewRateLimiter(app.Cfg.JoinRateLimit, app.Cfg.JoinRateWindow, stop))

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)

	// ============================================================================
	// GOALS (/api/goals/*)
	// ============================================================================

	mux.HandleFunc("GET /api/goals", auth(goal.List))
	mux.HandleFunc("GET /api/goals/export", auth(goal.Export))
	mux.HandleFunc("POST /api/goals", auth(goal.Create))
	mux.HandleFunc("GET /api/goals/{id}", auth(goal.Show))
	mux.HandleFunc("PATCH /api/goals/{id}", auth(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", auth(goal.Delete))

	// Scheduling and progress
	mux.HandleFunc("POST /api/goals/{id}/start-early", auth(goal.StartEarly))
	mux.HandleFunc("POST /api/goals/{id}/postpone", auth(goal.Postpone))
	mux.HandleFunc("PUT /api/goals/{id}/progress", auth(goal.UpdateProgress))

	// Review
	mux.HandleFunc("POST /api/goals/{id}/approve", teacher(goal.Approve))
	mux.HandleFunc("POST /api/goals/{id}/reject", teacher(goal.Reject))
	mux.HandleFunc("POST /api/goals/{id}/achieved", teacher(goal.MarkAchieved))
	mux.HandleFunc("DELETE /api/goals/{id}/achieved", teacher(goal.UnmarkAchieved))

	// ============================================================================
	// PROJECTS AND GROUPS
	// ============================================================================

	mux.HandleFunc("GET /api/projects", auth(project.List))
	mux.HandleFunc("POST /api/projects", auth(project.Create))
	mux.HandleFunc("GET /api/projects/{id}", auth(project.Show))
	mux.HandleFunc("PATCH /api/projects/{id}/status", auth(project.UpdateStatus))
	mux.HandleFunc("GET /api/projects/{id}/comments", auth(project.Comments))
	mux.HandleFunc("POST /api/projects/{id}/comments", teacher(project.AddComment))

	mux.HandleFunc("GET /api/groups", auth(group.List))
	mux.HandleFunc("POST /api/groups", teacher(group.Create))
	mux.HandleFunc("POST /api/groups/join", joinLimit(auth(group.Join)))
	mux.HandleFunc("GET /api/groups/{id}", auth(group.Show))
	mux.HandleFunc("DELETE /api/groups/{id}/membership", auth(group.Leave))

	mux.HandleFunc("GET /api/groups/{id}/resources", auth(resource.List))
	mux.HandleFunc("POST /api/groups/{id}/resources", teacher(resource.Create))
	mux.HandleFunc("DELETE /api/groups/{id}/resources/{resourceID}", teacher(resource.Delete))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.Config(app.Cfg),
		middleware.AuthMiddleware(app.AuthService),
	)
}
