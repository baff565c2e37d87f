package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/stemcapstone/smartgoals/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.ProjectComment) error
	// Comments lists a project's comments oldest first.
	Comments(ctx context.Context, projectID string) ([]*model.ProjectComment, error)
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.ProjectComment) error {
	query := `INSERT INTO project_comments (id, project_id, author_id, author_name, content, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.ProjectID,
		comment.AuthorID,
		comment.AuthorName,
		comment.Content,
		comment.CreatedAt,
	)

	return err
}

func (r *commentRepository) Comments(ctx context.Context, projectID string) ([]*model.ProjectComment, error) {
	comments := []*model.ProjectComment{}
	query := `SELECT * FROM project_comments WHERE project_id = $1 ORDER BY created_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &comments, query, projectID)
	if err != nil {
		return nil, err
	}

	return comments, nil
}
