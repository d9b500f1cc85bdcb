package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/natalia11920/pairpay/internal/models"
	"github.com/natalia11920/pairpay/internal/storage"
)

const userColumns = "id, name, surname, mail, admin, password_hash, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Surname,
		&user.Mail,
		&user.Admin,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// CreateUser inserts a new user into the database.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, surname, mail, admin, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Name,
		user.Surname,
		user.Mail,
		user.Admin,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("mail %s: %w", user.Mail, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	return nil
}

// GetUserByMail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByMail(ctx context.Context, mail string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE mail = ?", mail))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", mail, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by mail: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple users by their IDs.
// Users that don't exist are omitted from the result.
func (s *SQLiteStore) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*models.User, error) {
	users := make(map[int64]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id IN ("+placeholders(len(ids))+")",
		int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UpdateUser writes the editable profile fields.
func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, surname = ?, mail = ?, admin = ?, updated_at = ?
		WHERE id = ?`,
		user.Name, user.Surname, user.Mail, user.Admin, user.UpdatedAt, user.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("mail %s: %w", user.Mail, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return rowsAffected(res, fmt.Sprintf("user %d", user.ID))
}

// ListUserMails returns the mail of every user except excludeID.
func (s *SQLiteStore) ListUserMails(ctx context.Context, excludeID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT mail FROM users WHERE id <> ? ORDER BY mail", excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list mails: %w", err)
	}
	defer rows.Close()

	mails := []string{}
	for rows.Next() {
		var mail string
		if err := rows.Scan(&mail); err != nil {
			return nil, fmt.Errorf("failed to scan mail: %w", err)
		}
		mails = append(mails, mail)
	}
	return mails, rows.Err()
}
