package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
)

var (
	// ErrEmailInUse email já cadastrado
	ErrEmailInUse = errors.New("email já cadastrado")
	// ErrWeakPassword senha abaixo do mínimo exigido
	ErrWeakPassword = errors.New("a senha deve ter pelo menos 8 caracteres")
	// ErrInvalidRole papel desconhecido
	ErrInvalidRole = errors.New("papel de usuário inválido")
)

// AdminService administra os usuários do painel.
type AdminService struct {
	users storage.UserRepository
	log   *zap.Logger
}

// NewAdminService cria o serviço administrativo.
func NewAdminService(users storage.UserRepository, log *zap.Logger) *AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{users: users, log: log}
}

// CreateUserInput define os dados de cadastro de um usuário do painel.
type CreateUserInput struct {
	Email    string          `json:"email"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role"`
}

// CreateUser cadastra um usuário com senha protegida por bcrypt.
func (s *AdminService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := domain.ValidateEmailAddress(email); err != nil {
		return nil, err
	}
	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	switch role {
	case domain.RoleUser, domain.RoleAdmin, domain.RoleSuper:
	default:
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("falha ao proteger a senha: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.TrimSpace(input.Username),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(user); err != nil {
		if errors.Is(err, storage.ErrEmailExists) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("falha ao cadastrar usuário: %w", err)
	}

	s.log.Info("usuário cadastrado",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// ListUsers devolve uma página de usuários com busca opcional.
func (s *AdminService) ListUsers(ctx context.Context, page, pageSize int, search string) ([]domain.User, int, error) {
	return s.users.ListUsers(page, pageSize, search)
}

// SetUserActive ativa ou desativa um usuário do painel.
func (s *AdminService) SetUserActive(ctx context.Context, userID string, active bool) error {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return err
	}

	user.IsActive = active
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.UpdateUser(user); err != nil {
		return fmt.Errorf("falha ao atualizar usuário: %w", err)
	}

	s.log.Info("situação do usuário alterada",
		zap.String("user_id", userID),
		zap.Bool("active", active),
	)
	return nil
}
