package sql

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

// ========== User Repository ==========

const userColumns = `
	id, email, username, password_hash, role, is_active, created_at, updated_at, last_login_at
`

// CreateUser cadastra um usuário do painel.
func (s *Store) CreateUser(user *domain.User) error {
	query := s.rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.Exec(query,
		user.ID,
		strings.ToLower(user.Email),
		user.Username,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
		user.LastLoginAt,
	)
	if err != nil && isUniqueViolation(err) {
		return storage.ErrEmailExists
	}
	return err
}

// GetUserByID busca um usuário pelo ID.
func (s *Store) GetUserByID(id string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.scanUser(s.db.QueryRow(query, id))
}

// GetUserByEmail busca um usuário pelo email.
func (s *Store) GetUserByEmail(email string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return s.scanUser(s.db.QueryRow(query, strings.ToLower(email)))
}

// GetUserByUsername busca um usuário pelo nome de usuário.
func (s *Store) GetUserByUsername(username string) (*domain.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower(?)`)
	return s.scanUser(s.db.QueryRow(query, username))
}

// UpdateUser substitui os campos mutáveis de um usuário existente.
func (s *Store) UpdateUser(user *domain.User) error {
	query := s.rebind(`
		UPDATE users SET
			email = ?, username = ?, password_hash = ?, role = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := s.db.Exec(query,
		strings.ToLower(user.Email),
		user.Username,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin registra o instante do último acesso.
func (s *Store) UpdateLastLogin(userID string) error {
	query := s.rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`)
	result, err := s.db.Exec(query, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrUserNotFound
	}
	return nil
}

// ListUsers devolve uma página de usuários com busca opcional por email ou
// nome de usuário.
func (s *Store) ListUsers(page, pageSize int, search string) ([]domain.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	search = strings.TrimSpace(search)

	var (
		total int
		err   error
	)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		err = s.db.QueryRow(
			s.rebind(`SELECT COUNT(*) FROM users WHERE lower(email) LIKE ? OR lower(username) LIKE ?`),
			pattern, pattern,
		).Scan(&total)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&total)
	}
	if err != nil {
		return nil, 0, err
	}

	var rows *sql.Rows
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query := s.rebind(`
			SELECT ` + userColumns + ` FROM users
			WHERE lower(email) LIKE ? OR lower(username) LIKE ?
			ORDER BY created_at ASC
			LIMIT ? OFFSET ?
		`)
		rows, err = s.db.Query(query, pattern, pattern, pageSize, offset)
	} else {
		query := s.rebind(`
			SELECT ` + userColumns + ` FROM users
			ORDER BY created_at ASC
			LIMIT ? OFFSET ?
		`)
		rows, err = s.db.Query(query, pageSize, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, pageSize)
	for rows.Next() {
		user, err := s.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (s *Store) scanUser(row rowScanner) (*domain.User, error) {
	var (
		user        domain.User
		lastLoginAt sql.NullTime
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	return &user, nil
}

// isUniqueViolation identifica violação de unicidade sem depender do driver.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
