package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/stemcapstone/smartgoals/internal/model"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *model.GroupResource) error
	ByID(ctx context.Context, id string) (*model.GroupResource, error)
	Resources(ctx context.Context, groupID string) ([]*model.GroupResource, error)
	Delete(ctx context.Context, id string) error
}

type resourceRepository struct {
	db *sqlx.DB
}

func NewResourceRepository(db *sqlx.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *model.GroupResource) error {
	query := `INSERT INTO group_resources (id, group_id, teacher_id, title, description, kind, url, file_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		resource.ID,
		resource.GroupID,
		resource.TeacherID,
		resource.Title,
		resource.Description,
		resource.Kind,
		resource.URL,
		resource.FileID,
		resource.CreatedAt,
	)

	return err
}

func (r *resourceRepository) ByID(ctx context.Context, id string) (*model.GroupResource, error) {
	resource := &model.GroupResource{}
	query := `SELECT * FROM group_resources WHERE id = $1`

	err := r.db.GetContext(ctx, resource, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}

	return resource, nil
}

func (r *resourceRepository) Resources(ctx context.Context, groupID string) ([]*model.GroupResource, error) {
	resources := []*model.GroupResource{}
	query := `SELECT * FROM group_resources WHERE group_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &resources, query, groupID)
	if err != nil {
		return nil, err
	}

	return resources, nil
}

func (r *resourceRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM group_resources WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrResourceNotFound
	}

	return nil
}
