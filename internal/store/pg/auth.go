package pg

import (
	"context"
	"database/sql"
	"errors"

	"storycat.app/internal/auth"
)

var _ auth.ProfileStore = (*Store)(nil)

const profileColumns = `id, email, full_name, role, password_hash, status, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*auth.Profile, error) {
	var p auth.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.PasswordHash,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *auth.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		insert into profiles(id, email, full_name, role, password_hash, status, created_at, updated_at)
		values ($1, lower($2), $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Email, p.FullName, p.Role, p.PasswordHash, p.Status, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err, "") {
		return auth.ErrAlreadyExists
	}
	return err
}

func (s *Store) FindProfile(ctx context.Context, id string) (*auth.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+profileColumns+` from profiles where id=$1`, id)
	return scanProfile(row)
}

func (s *Store) FindProfileByEmail(ctx context.Context, email string) (*auth.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+profileColumns+` from profiles where email=lower($1)`, email)
	return scanProfile(row)
}

func (s *Store) ListProfiles(ctx context.Context) ([]*auth.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+profileColumns+` from profiles order by created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*auth.Profile
	for rows.Next() {
		var p auth.Profile
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.PasswordHash,
			&p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, &p)
	}
	return res, rows.Err()
}

func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from profiles where id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return auth.ErrNotFound
	}
	return nil
}
