package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/stemcapstone/smartgoals/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

// updatableGoalColumns guards the SET clause built from caller field names.
var updatableGoalColumns = map[string]bool{
	model.FieldProjectID:       true,
	model.FieldGroupID:         true,
	model.FieldTitle:           true,
	model.FieldSpecific:        true,
	model.FieldMeasurable:      true,
	model.FieldAchievable:      true,
	model.FieldRelevant:        true,
	model.FieldTimeBoundStart:  true,
	model.FieldTimeBoundEnd:    true,
	model.FieldStartDate:       true,
	model.FieldProgress:        true,
	model.FieldApprovalStatus:  true,
	model.FieldTeacherFeedback: true,
	model.FieldTeacherID:       true,
	model.FieldAchieved:        true,
	model.FieldAchievedAt:      true,
	model.FieldStartedEarly:    true,
	model.FieldPostponed:       true,
	model.FieldUpdatedAt:       true,
}

// GoalFilter narrows a goal listing. Empty fields do not filter. A non-nil
// empty GroupIDs matches nothing.
type GoalFilter struct {
	UserID    string
	GroupIDs  []string
	GroupID   string
	ProjectID string
	Status    model.ApprovalStatus
}

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) error
	ByID(ctx context.Context, id string) (*model.Goal, error)
	Goals(ctx context.Context, filter GoalFilter) ([]*model.Goal, error)
	// Update writes only the given columns and returns the stored goal.
	Update(ctx context.Context, id string, fields model.Fields) (*model.Goal, error)
	Delete(ctx context.Context, id string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) error {
	query := `INSERT INTO smart_goals (id, user_id, project_id, group_id, title, specific, measurable, achievable, relevant,
	              time_bound_start, time_bound_end, start_date, progress, approval_status, achieved, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.ProjectID,
		goal.GroupID,
		goal.Title,
		goal.Specific,
		goal.Measurable,
		goal.Achievable,
		goal.Relevant,
		goal.TimeBoundStart,
		goal.TimeBoundEnd,
		goal.StartDate,
		goal.Progress,
		goal.ApprovalStatus,
		goal.Achieved,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

func (r *goalRepository) ByID(ctx context.Context, id string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT * FROM smart_goals WHERE id = $1`

	err := r.db.GetContext(ctx, goal, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// Goals returns matching goals oldest first, which is the fetch order the
// board keeps for ties.
func (r *goalRepository) Goals(ctx context.Context, filter GoalFilter) ([]*model.Goal, error) {
	if filter.GroupIDs != nil && len(filter.GroupIDs) == 0 {
		return []*model.Goal{}, nil
	}

	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if len(filter.GroupIDs) > 0 {
		where = append(where, "group_id IN (?)")
		args = append(args, filter.GroupIDs)
	}
	if filter.GroupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.Status != "" {
		where = append(where, "approval_status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT * FROM smart_goals`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}

	goals := []*model.Goal{}
	err = r.db.SelectContext(ctx, &goals, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) Update(ctx context.Context, id string, fields model.Fields) (*model.Goal, error) {
	if len(fields) == 0 {
		return r.ByID(ctx, id)
	}

	// sorted so the statement text is stable
	cols := slices.Sorted(maps.Keys(fields))

	set := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		if !updatableGoalColumns[col] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, col)
		}
		args = append(args, fields[col])
		set[i] = fmt.Sprintf("%s = $%d", col, len(args))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE smart_goals SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUndefinedColumn(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnknownField, err)
		}
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rows == 0 {
		return nil, ErrGoalNotFound
	}

	return r.ByID(ctx, id)
}

func (r *goalRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM smart_goals WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}
