package sql

import (
	"database/sql"
	"errors"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

// ========== Mail Account Repository ==========

const mailAccountColumns = `
	id, host, port, username, password, from_name, is_default, created_at, updated_at
`

// SaveMailAccount grava uma conta de envio. Marcar a conta como padrão
// desmarca as demais na mesma transação.
func (s *Store) SaveMailAccount(account *domain.MailAccount) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if account.IsDefault {
		if _, err := tx.Exec(s.rebind(`UPDATE mail_accounts SET is_default = ? WHERE id <> ?`), false, account.ID); err != nil {
			return err
		}
	}

	query := s.rebind(`
		INSERT INTO mail_accounts (` + mailAccountColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if _, err := tx.Exec(query,
		account.ID,
		account.Host,
		account.Port,
		account.Username,
		account.Password,
		account.FromName,
		account.IsDefault,
		account.CreatedAt,
		account.UpdatedAt,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateMailAccount regrava uma conta existente, mantendo o padrão único.
func (s *Store) UpdateMailAccount(account *domain.MailAccount) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if account.IsDefault {
		if _, err := tx.Exec(s.rebind(`UPDATE mail_accounts SET is_default = ? WHERE id <> ?`), false, account.ID); err != nil {
			return err
		}
	}

	query := s.rebind(`
		UPDATE mail_accounts
		SET host = ?, port = ?, username = ?, password = ?, from_name = ?, is_default = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := tx.Exec(query,
		account.Host,
		account.Port,
		account.Username,
		account.Password,
		account.FromName,
		account.IsDefault,
		account.UpdatedAt,
		account.ID,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrMailAccountNotFound
	}

	return tx.Commit()
}

// GetMailAccount busca uma conta pelo ID.
func (s *Store) GetMailAccount(id string) (*domain.MailAccount, error) {
	query := s.rebind(`SELECT ` + mailAccountColumns + ` FROM mail_accounts WHERE id = ?`)
	return s.scanMailAccount(s.db.QueryRow(query, id))
}

// GetDefaultMailAccount devolve a conta marcada como padrão.
func (s *Store) GetDefaultMailAccount() (*domain.MailAccount, error) {
	query := s.rebind(`SELECT ` + mailAccountColumns + ` FROM mail_accounts WHERE is_default = ? LIMIT 1`)
	account, err := s.scanMailAccount(s.db.QueryRow(query, true))
	if errors.Is(err, storage.ErrMailAccountNotFound) {
		return nil, storage.ErrNoDefaultMailAccount
	}
	return account, err
}

// ListMailAccounts devolve todas as contas ordenadas por criação.
func (s *Store) ListMailAccounts() ([]domain.MailAccount, error) {
	rows, err := s.db.Query(`SELECT ` + mailAccountColumns + ` FROM mail_accounts ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]domain.MailAccount, 0)
	for rows.Next() {
		account, err := s.scanMailAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

// SetDefaultMailAccount torna a conta id a única padrão.
func (s *Store) SetDefaultMailAccount(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(s.rebind(`UPDATE mail_accounts SET is_default = ? WHERE id = ?`), true, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrMailAccountNotFound
	}

	if _, err := tx.Exec(s.rebind(`UPDATE mail_accounts SET is_default = ? WHERE id <> ?`), false, id); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteMailAccount remove uma conta de envio.
func (s *Store) DeleteMailAccount(id string) error {
	result, err := s.db.Exec(s.rebind(`DELETE FROM mail_accounts WHERE id = ?`), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrMailAccountNotFound
	}
	return nil
}

func (s *Store) scanMailAccount(row rowScanner) (*domain.MailAccount, error) {
	var account domain.MailAccount
	err := row.Scan(
		&account.ID,
		&account.Host,
		&account.Port,
		&account.Username,
		&account.Password,
		&account.FromName,
		&account.IsDefault,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrMailAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}
