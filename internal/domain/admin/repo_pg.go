package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinica/clinica/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type userRepoPG struct{ pool *pgxpool.Pool }

func NewSystemUserRepoPG(pool *pgxpool.Pool) SystemUserRepository { return &userRepoPG{pool: pool} }

func (r *userRepoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const userCols = `id, username, display_name, email, professional_id, status, last_login,
	created_at, updated_at`

func (r *userRepoPG) scanUser(row pgx.Row) (*SystemUser, error) {
	var u SystemUser
	err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.ProfessionalID,
		&u.Status, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *SystemUser) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO system_user (id, username, display_name, email, professional_id, status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Username, u.DisplayName, u.Email, u.ProfessionalID, u.Status)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SystemUser, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM system_user WHERE id = $1`, id))
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*SystemUser, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM system_user WHERE username = $1`, username))
}

func (r *userRepoPG) Update(ctx context.Context, u *SystemUser) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE system_user SET display_name=$2, email=$3, professional_id=$4, status=$5,
			updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.DisplayName, u.Email, u.ProfessionalID, u.Status)
	return err
}

func (r *userRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM system_user WHERE id = $1`, id)
	return err
}

func (r *userRepoPG) List(ctx context.Context, limit, offset int) ([]*SystemUser, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM system_user`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM system_user
		ORDER BY username LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []*SystemUser
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *userRepoPG) AssignRole(ctx context.Context, a *UserRoleAssignment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO user_role_assignment (id, user_id, role_name, active, granted_by_id)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.UserID, a.RoleName, a.Active, a.GrantedByID)
	return err
}

func (r *userRepoPG) GetRoles(ctx context.Context, userID uuid.UUID) ([]*UserRoleAssignment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, user_id, role_name, active, granted_by_id, created_at
		FROM user_role_assignment WHERE user_id = $1 AND active ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*UserRoleAssignment
	for rows.Next() {
		var a UserRoleAssignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.RoleName, &a.Active, &a.GrantedByID, &a.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, &a)
	}
	return roles, rows.Err()
}

func (r *userRepoPG) RemoveRole(ctx context.Context, assignmentID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE user_role_assignment SET active = FALSE WHERE id = $1`, assignmentID)
	return err
}
