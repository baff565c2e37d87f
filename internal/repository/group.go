package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/stemcapstone/smartgoals/internal/model"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrDuplicateCode  = errors.New("group code already exists")
	ErrAlreadyMember  = errors.New("already a member of this group")
	ErrMemberNotFound = errors.New("group member not found")
)

type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	ByID(ctx context.Context, id string) (*model.Group, error)
	// ByCode matches join codes case-insensitively.
	ByCode(ctx context.Context, code string) (*model.Group, error)
	TeacherGroups(ctx context.Context, teacherID string) ([]*model.Group, error)
	MemberGroups(ctx context.Context, userID string) ([]*model.Group, error)
	AddMember(ctx context.Context, groupID, userID string, joinedAt time.Time) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	// Members lists a group's students in join order.
	Members(ctx context.Context, groupID string) ([]*model.GroupMember, error)
}

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *model.Group) error {
	query := `INSERT INTO student_groups (id, name, code, teacher_id, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, group.ID, group.Name, group.Code, group.TeacherID, group.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCode
		}
		return err
	}

	return nil
}

func (r *groupRepository) ByID(ctx context.Context, id string) (*model.Group, error) {
	group := &model.Group{}
	query := `SELECT * FROM student_groups WHERE id = $1`

	err := r.db.GetContext(ctx, group, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	return group, nil
}

func (r *groupRepository) ByCode(ctx context.Context, code string) (*model.Group, error) {
	group := &model.Group{}
	query := `SELECT * FROM student_groups WHERE UPPER(code) = UPPER($1)`

	err := r.db.GetContext(ctx, group, query, code)
	if err == sql.ErrNoRows {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	return group, nil
}

const groupWithCount = `SELECT g.id, g.name, g.code, g.teacher_id, g.created_at,
	(SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id) AS member_count
	FROM student_groups g`

func (r *groupRepository) TeacherGroups(ctx context.Context, teacherID string) ([]*model.Group, error) {
	groups := []*model.Group{}
	query := groupWithCount + ` WHERE g.teacher_id = $1 ORDER BY g.created_at ASC`

	err := r.db.SelectContext(ctx, &groups, query, teacherID)
	if err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *groupRepository) MemberGroups(ctx context.Context, userID string) ([]*model.Group, error) {
	groups := []*model.Group{}
	query := groupWithCount + ` JOIN group_members gm ON gm.group_id = g.id
	          WHERE gm.user_id = $1 ORDER BY gm.joined_at ASC`

	err := r.db.SelectContext(ctx, &groups, query, userID)
	if err != nil {
		return nil, err
	}

	return groups, nil
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID string, joinedAt time.Time) error {
	query := `INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query, groupID, userID, joinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyMember
		}
		return err
	}

	return nil
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrMemberNotFound
	}

	return nil
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM group_members WHERE group_id = $1 AND user_id = $2`

	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(&count)
	return count > 0, err
}

func (r *groupRepository) Members(ctx context.Context, groupID string) ([]*model.GroupMember, error) {
	members := []*model.GroupMember{}
	query := `SELECT m.group_id, m.user_id, m.joined_at, u.name, u.email
	          FROM group_members m JOIN users u ON u.id = m.user_id
	          WHERE m.group_id = $1 ORDER BY m.joined_at ASC, u.name ASC`

	err := r.db.SelectContext(ctx, &members, query, groupID)
	if err != nil {
		return nil, err
	}

	return members, nil
}
