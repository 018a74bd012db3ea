package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Davilys/webmarcas1-sub006/internal/config"
	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/service"
	"github.com/Davilys/webmarcas1-sub006/internal/storage"
	"github.com/Davilys/webmarcas1-sub006/internal/storage/hybrid"
)

// Utilitário de bootstrap: cadastra o primeiro administrador do painel
// direto no banco configurado.
func main() {
	if len(os.Args) < 4 {
		fmt.Println("Uso: create-admin <email> <senha> <nome-de-usuario> [admin|super]")
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]
	username := os.Args[3]
	roleStr := "admin"
	if len(os.Args) >= 5 {
		roleStr = os.Args[4]
	}

	var role domain.UserRole
	switch roleStr {
	case "admin":
		role = domain.RoleAdmin
	case "super":
		role = domain.RoleSuper
	default:
		fmt.Printf("Papel inválido: %s (use admin ou super)\n", roleStr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Falha ao carregar a configuração: %v\n", err)
		os.Exit(1)
	}

	if cfg.Database.Type == "" || cfg.Database.DSN == "" {
		fmt.Println("Configure WEBMARCAS_DATABASE_TYPE e WEBMARCAS_DATABASE_DSN: o armazenamento em memória não persiste usuários.")
		os.Exit(1)
	}

	var store storage.Store
	store, err = hybrid.NewStoreWithType(
		cfg.Database.Type,
		cfg.Database.DSN,
		cfg.Redis.Address,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		fmt.Printf("Falha ao conectar ao armazenamento: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	admin := service.NewAdminService(store, nil)
	user, err := admin.CreateUser(context.Background(), service.CreateUserInput{
		Email:    email,
		Username: username,
		Password: password,
		Role:     role,
	})
	if err != nil {
		fmt.Printf("Falha ao cadastrar o administrador: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Administrador cadastrado com sucesso:")
	fmt.Printf("  ID:      %s\n", user.ID)
	fmt.Printf("  Email:   %s\n", user.Email)
	fmt.Printf("  Usuário: %s\n", user.Username)
	fmt.Printf("  Papel:   %s\n", user.Role)
}
