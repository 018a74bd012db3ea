package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
)

var (
	// ErrInvalidCredentials identificador ou senha incorretos
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrUserInactive usuário desativado
	ErrUserInactive = errors.New("usuário desativado")
	// ErrUserNotFound usuário inexistente
	ErrUserNotFound = errors.New("usuário não encontrado")
	// ErrInvalidPassword senha fora dos limites aceitos
	ErrInvalidPassword = errors.New("a senha deve ter entre 8 e 72 caracteres")
)

// UserRepository operações de usuário exigidas pela autenticação.
type UserRepository interface {
	GetUserByID(id string) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	UpdateUser(user *domain.User) error
	UpdateLastLogin(userID string) error
}

// Service autentica os usuários do painel administrativo.
type Service struct {
	userRepo UserRepository
}

// NewService cria o serviço de autenticação.
func NewService(userRepo UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// LoginInput identificador (email ou nome de usuário) e senha.
type LoginInput struct {
	Identifier string
	Password   string
}

// Login valida as credenciais e devolve o usuário.
func (s *Service) Login(input LoginInput) (*domain.User, error) {
	identifier := strings.ToLower(strings.TrimSpace(input.Identifier))

	user, err := s.userRepo.GetUserByEmail(identifier)
	if err != nil {
		user, err = s.userRepo.GetUserByUsername(identifier)
		if err != nil {
			return nil, ErrInvalidCredentials
		}
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	_ = s.userRepo.UpdateLastLogin(user.ID)

	return user, nil
}

// GetUserByID busca um usuário pelo ID.
func (s *Service) GetUserByID(userID string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ChangePassword troca a senha após validar a atual.
func (s *Service) ChangePassword(userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	if !CheckPassword(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("falha ao proteger a senha: %w", err)
	}

	user.PasswordHash = newHash
	return s.userRepo.UpdateUser(user)
}

// ValidatePassword valida os limites da senha (72 é o máximo do bcrypt).
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

// HashPassword protege a senha com bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compara a senha com o hash armazenado.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
