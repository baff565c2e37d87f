package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemcapstone/smartgoals/internal/ctxkeys"
	"github.com/stemcapstone/smartgoals/internal/db/dbtest"
	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/model"
	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/service"
	"github.com/stemcapstone/smartgoals/internal/validation"
)

type testServer struct {
	users     *service.UserService
	sessions  *service.Sessions
	goals     *GoalHandler
	projects  *ProjectHandler
	groups    *GroupHandler
	resources *ResourceHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	database := dbtest.New(t, dbtest.Latest)
	v := validation.New()

	goalRepo := repository.NewGoalRepository(database)
	groupRepo := repository.NewGroupRepository(database)
	groupService := service.NewGroupService(groupRepo, v)
	projectService := service.NewProjectService(repository.NewProjectRepository(database), groupRepo, repository.NewCommentRepository(database), v)
	fileService := service.NewFileService(repository.NewFileRepository(database), nil)
	sessions := service.NewSessions(goalRepo, groupRepo, nil, time.Hour)
	t.Cleanup(sessions.FlushAll)

	return &testServer{
		users:     service.NewUserService(repository.NewUserRepository(database)),
		sessions:  sessions,
		goals:     NewGoalHandler(sessions, service.NewGoalService(goalRepo, projectService, v)),
		projects:  NewProjectHandler(projectService),
		groups:    NewGroupHandler(groupService, projectService),
		resources: NewResourceHandler(service.NewResourceService(repository.NewResourceRepository(database), groupService, fileService, v)),
	}
}

func (s *testServer) user(t *testing.T, email string, role model.Role) *model.User {
	t.Helper()
	u, err := s.users.Create(context.Background(), email, "User", role)
	require.NoError(t, err)
	return u
}

// call invokes h as user. pathValues are name/value pairs.
func call(t *testing.T, h http.HandlerFunc, method string, user *model.User, body any, pathValues ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/test", &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	if user != nil {
		req = req.WithContext(ctxkeys.WithUser(req.Context(), user))
	}

	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

type goalBody struct {
	Goal struct {
		ID             string `json:"id"`
		Title          string `json:"title"`
		ApprovalStatus string `json:"approval_status"`
		Progress       int    `json:"progress"`
		Achieved       bool   `json:"achieved"`
	} `json:"goal"`
	Bucket string `json:"bucket"`
}

func date(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func TestGoalAPIWorkflow(t *testing.T) {
	s := newTestServer(t)
	teacher := s.user(t, "teacher@example.com", model.RoleTeacher)
	student := s.user(t, "student@example.com", model.RoleStudent)
	stranger := s.user(t, "stranger@example.com", model.RoleStudent)

	rec := call(t, s.groups.Create, http.MethodPost, teacher, map[string]string{"name": "Robotics"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	group := decodeBody[model.Group](t, rec)

	rec = call(t, s.groups.Join, http.MethodPost, student, map[string]string{"code": group.Code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, s.projects.Create, http.MethodPost, student, map[string]string{"title": "Rover", "group_id": group.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decodeBody[model.Project](t, rec)

	rec = call(t, s.goals.Create, http.MethodPost, student, map[string]string{
		"project_id":       project.ID,
		"title":            "Weather station",
		"specific":         "Log temperature",
		"measurable":       "Hourly for 2 weeks",
		"achievable":       "Arduino kit",
		"relevant":         "Climate unit",
		"time_bound_start": date(7),
		"time_bound_end":   date(30),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[goalBody](t, rec)
	assert.Equal(t, "todo", created.Bucket)
	assert.Equal(t, "pending", created.Goal.ApprovalStatus)
	id := created.Goal.ID

	rec = call(t, s.goals.Show, http.MethodGet, stranger, nil, "id", id)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, s.goals.Show, http.MethodGet, student, nil, "id", "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, s.goals.StartEarly, http.MethodPost, student, nil, "id", id)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "doing", decodeBody[goalBody](t, rec).Bucket)

	rec = call(t, s.goals.Approve, http.MethodPost, student, map[string]string{"feedback": "self"}, "id", id)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, s.goals.Approve, http.MethodPost, teacher, map[string]string{"feedback": "Nice plan"}, "id", id)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decodeBody[goalBody](t, rec).Goal.ApprovalStatus)

	rec = call(t, s.goals.Approve, http.MethodPost, teacher, nil, "id", id)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, ErrCodeValidation, decodeBody[ErrorResponse](t, rec).Error.Code)

	rec = call(t, s.goals.Update, http.MethodPatch, student, map[string]string{"title": "Sneaky"}, "id", id)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, ErrCodeGoalLocked, decodeBody[ErrorResponse](t, rec).Error.Code)

	rec = call(t, s.goals.Reject, http.MethodPost, teacher, nil, "id", id)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, s.goals.Update, http.MethodPatch, student, map[string]string{"title": "Better station"}, "id", id)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decodeBody[goalBody](t, rec)
	assert.Equal(t, "Better station", edited.Goal.Title)
	assert.Equal(t, "pending", edited.Goal.ApprovalStatus)

	rec = call(t, s.goals.UpdateProgress, http.MethodPut, student, map[string]float64{"progress": 42.4}, "id", id)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, 42, decodeBody[goalBody](t, rec).Goal.Progress)

	rec = call(t, s.goals.MarkAchieved, http.MethodPost, teacher, nil, "id", id)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	achieved := decodeBody[goalBody](t, rec)
	assert.Equal(t, "done", achieved.Bucket)
	assert.Equal(t, 100, achieved.Goal.Progress)

	rec = call(t, s.goals.List, http.MethodGet, teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	buckets := decodeBody[map[string][]goalBody](t, rec)
	assert.Len(t, buckets["done"], 1)
	assert.Empty(t, buckets["todo"])

	rec = call(t, s.goals.UnmarkAchieved, http.MethodDelete, teacher, nil, "id", id)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "doing", decodeBody[goalBody](t, rec).Bucket)

	rec = call(t, s.goals.Export, http.MethodGet, student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "goals-export-")

	rec = call(t, s.goals.Delete, http.MethodDelete, student, nil, "id", id)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, s.goals.Show, http.MethodGet, student, nil, "id", id)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoalAPIRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	student := s.user(t, "student@example.com", model.RoleStudent)

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		body       any
		wantStatus int
		wantCode   string
	}{
		{"unknown field", s.goals.Create, map[string]string{"colour": "red"}, http.StatusBadRequest, ErrCodeBadRequest},
		{"empty goal", s.goals.Create, map[string]string{}, http.StatusUnprocessableEntity, ErrCodeValidation},
		{"progress missing", s.goals.UpdateProgress, map[string]string{}, http.StatusUnprocessableEntity, ErrCodeValidation},
		{"progress not a number", s.goals.UpdateProgress, map[string]string{"progress": "lots"}, http.StatusBadRequest, ErrCodeBadRequest},
		{"bad date", s.goals.Update, map[string]string{"start_date": "tomorrow"}, http.StatusUnprocessableEntity, ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, tt.handler, http.MethodPost, student, tt.body, "id", "g1")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeBody[ErrorResponse](t, rec).Error.Code)
		})
	}

	t.Run("invalid status filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/goals?status=maybe", nil)
		req = req.WithContext(ctxkeys.WithUser(req.Context(), student))
		rec := httptest.NewRecorder()
		s.goals.List(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeBody[ErrorResponse](t, rec)
		require.Len(t, body.Error.Fields, 1)
		assert.Equal(t, "status", body.Error.Fields[0].Field)
	})
}

func TestGroupAPI(t *testing.T) {
	s := newTestServer(t)
	teacher := s.user(t, "teacher@example.com", model.RoleTeacher)
	student := s.user(t, "student@example.com", model.RoleStudent)

	rec := call(t, s.groups.Create, http.MethodPost, student, map[string]string{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, s.groups.Create, http.MethodPost, teacher, map[string]string{"name": "Robotics"})
	require.Equal(t, http.StatusCreated, rec.Code)
	group := decodeBody[model.Group](t, rec)

	rec = call(t, s.groups.Join, http.MethodPost, student, map[string]string{"code": "??"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = call(t, s.groups.Join, http.MethodPost, student, map[string]string{"code": "ZZZZZZ"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, s.groups.Join, http.MethodPost, student, map[string]string{"code": group.Code})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, s.groups.Join, http.MethodPost, student, map[string]string{"code": group.Code})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ErrCodeConflict, decodeBody[ErrorResponse](t, rec).Error.Code)

	rec = call(t, s.groups.List, http.MethodGet, teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decodeBody[[]model.Group](t, rec)
	require.Len(t, groups, 1)
	assert.Equal(t, 1, groups[0].MemberCount)

	rec = call(t, s.projects.Create, http.MethodPost, student, map[string]string{"title": "Rover", "group_id": group.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, s.groups.Show, http.MethodGet, student, nil, "id", group.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	detail := decodeBody[struct {
		ID          string `json:"id"`
		MemberCount int    `json:"member_count"`
		Members     []struct {
			UserID   string    `json:"user_id"`
			Name     string    `json:"name"`
			JoinedAt time.Time `json:"joined_at"`
		} `json:"members"`
		Projects []model.Project `json:"projects"`
	}](t, rec)
	assert.Equal(t, group.ID, detail.ID)
	assert.Equal(t, 1, detail.MemberCount)
	require.Len(t, detail.Members, 1)
	assert.Equal(t, student.ID, detail.Members[0].UserID)
	assert.False(t, detail.Members[0].JoinedAt.IsZero())
	require.Len(t, detail.Projects, 1)
	assert.Equal(t, "Rover", detail.Projects[0].Title)

	outsider := s.user(t, "outsider@example.com", model.RoleStudent)
	rec = call(t, s.groups.Show, http.MethodGet, outsider, nil, "id", group.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, s.groups.Show, http.MethodGet, teacher, nil, "id", "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, s.resources.Create, http.MethodPost, teacher, map[string]string{
		"title": "Datasheet",
		"kind":  "link",
		"url":   "https://example.com/sheet.pdf",
	}, "id", group.ID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resource := decodeBody[model.GroupResource](t, rec)

	rec = call(t, s.resources.Create, http.MethodPost, student, map[string]string{
		"title": "Spam",
		"kind":  "link",
		"url":   "https://example.com",
	}, "id", group.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, s.resources.List, http.MethodGet, student, nil, "id", group.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]model.GroupResource](t, rec), 1)

	rec = call(t, s.resources.Delete, http.MethodDelete, teacher, nil, "id", group.ID, "resourceID", resource.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, s.groups.Leave, http.MethodDelete, student, nil, "id", group.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, s.resources.List, http.MethodGet, student, nil, "id", group.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProjectCommentsAPI(t *testing.T) {
	s := newTestServer(t)
	teacher := s.user(t, "teacher@example.com", model.RoleTeacher)
	student := s.user(t, "student@example.com", model.RoleStudent)
	otherTeacher := s.user(t, "other@example.com", model.RoleTeacher)

	rec := call(t, s.groups.Create, http.MethodPost, teacher, map[string]string{"name": "Robotics"})
	require.Equal(t, http.StatusCreated, rec.Code)
	group := decodeBody[model.Group](t, rec)
	rec = call(t, s.groups.Join, http.MethodPost, student, map[string]string{"code": group.Code})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, s.projects.Create, http.MethodPost, student, map[string]string{"title": "Rover", "group_id": group.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	project := decodeBody[model.Project](t, rec)

	rec = call(t, s.projects.AddComment, http.MethodPost, student, map[string]string{"content": "Me again"}, "id", project.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, s.projects.AddComment, http.MethodPost, teacher, map[string]string{"content": "   "}, "id", project.ID)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = call(t, s.projects.AddComment, http.MethodPost, otherTeacher, map[string]string{"content": "Drive-by"}, "id", project.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	for _, content := range []string{"Nice scope", "Add a budget"} {
		rec = call(t, s.projects.AddComment, http.MethodPost, teacher, map[string]string{"content": content}, "id", project.ID)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = call(t, s.projects.Comments, http.MethodGet, student, nil, "id", project.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	comments := decodeBody[[]model.ProjectComment](t, rec)
	require.Len(t, comments, 2)
	assert.Equal(t, "Nice scope", comments[0].Content)
	assert.Equal(t, "Add a budget", comments[1].Content)
	assert.Equal(t, teacher.ID, comments[0].AuthorID)
	assert.Equal(t, "User", comments[0].AuthorName)

	rec = call(t, s.projects.Comments, http.MethodGet, otherTeacher, nil, "id", project.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFailStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"transition", &lifecycle.TransitionError{GoalID: "g1", From: model.ApprovalApproved, To: model.ApprovalApproved}, http.StatusUnprocessableEntity, ErrCodeValidation},
		{"wrapped validation sentinel", fmt.Errorf("postpone: %w", lifecycle.ErrValidation), http.StatusUnprocessableEntity, ErrCodeValidation},
		{"locked", &lifecycle.LockedError{GoalID: "g1", Status: model.ApprovalApproved, Action: "edit"}, http.StatusForbidden, ErrCodeGoalLocked},
		{"denied", lifecycle.ErrPermissionDenied, http.StatusForbidden, ErrCodeForbidden},
		{"not found", lifecycle.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"store down", lifecycle.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrCodeUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			fail(rec, httptest.NewRequest(http.MethodPost, "/api/goals/g1/approve", nil), tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeBody[ErrorResponse](t, rec).Error.Code)
		})
	}
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		want       string
	}{
		{"up", nil, http.StatusOK, "ok"},
		{"down", errors.New("database is closed"), http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, NewHealthHandler(fakePinger{tt.err}).Health, http.MethodGet, nil, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.want, decodeBody[healthResponse](t, rec).Status)
		})
	}
}
