package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/stemcapstone/smartgoals/internal/model"
)

var (
	ErrProjectNotFound = errors.New("project not found")
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	ByID(ctx context.Context, id string) (*model.Project, error)
	// Projects lists the user's own projects and, when groupIDs is not empty,
	// every project in those groups.
	Projects(ctx context.Context, userID string, groupIDs []string) ([]*model.Project, error)
	GroupProjects(ctx context.Context, groupID string) ([]*model.Project, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	query := `INSERT INTO projects (id, user_id, group_id, title, description, category, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		project.ID,
		project.UserID,
		project.GroupID,
		project.Title,
		project.Description,
		project.Category,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)

	return err
}

func (r *projectRepository) ByID(ctx context.Context, id string) (*model.Project, error) {
	project := &model.Project{}
	query := `SELECT * FROM projects WHERE id = $1`

	err := r.db.GetContext(ctx, project, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	return project, nil
}

func (r *projectRepository) Projects(ctx context.Context, userID string, groupIDs []string) ([]*model.Project, error) {
	query := `SELECT * FROM projects WHERE user_id = ?`
	args := []any{userID}

	if len(groupIDs) > 0 {
		query += ` OR group_id IN (?)`
		args = append(args, groupIDs)
	}
	query += ` ORDER BY created_at DESC`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}

	projects := []*model.Project{}
	err = r.db.SelectContext(ctx, &projects, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectRepository) GroupProjects(ctx context.Context, groupID string) ([]*model.Project, error) {
	projects := []*model.Project{}
	query := `SELECT * FROM projects WHERE group_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &projects, query, groupID)
	if err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE projects SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrProjectNotFound
	}

	return nil
}
