package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
)

// ErrCacheMiss chave ausente ou expirada no cache.
var ErrCacheMiss = errors.New("registro não encontrado no cache")

// Cache camada de cache sobre Redis usada pelo armazenamento híbrido.
type Cache struct {
	client *redis.Client
	ctx    context.Context
}

// NewCache cria uma instância de cache Redis.
func NewCache(addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("falha ao conectar ao redis: %w", err)
	}

	return &Cache{
		client: client,
		ctx:    ctx,
	}, nil
}

// Close fecha a conexão com o Redis.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Health verifica a conexão.
func (c *Cache) Health() error {
	return c.client.Ping(c.ctx).Err()
}

// ========== Cache de contratos por token ==========
//
// A resolução pública de contratos é o caminho de leitura mais quente: cada
// abertura do link de assinatura consulta o token. O cache guarda o contrato
// serializado sob o token, com TTL curto para o estado não divergir do banco
// por muito tempo após assinatura ou expiração.

// CacheContractByToken guarda o contrato sob seu token de resolução.
func (c *Cache) CacheContractByToken(contract *domain.Contract, ttl time.Duration) error {
	if contract.AccessToken == "" {
		return nil
	}
	key := fmt.Sprintf("contract:token:%s", contract.AccessToken)
	data, err := json.Marshal(contract)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, key, data, ttl).Err()
}

// GetCachedContractByToken busca o contrato pelo token de resolução.
func (c *Cache) GetCachedContractByToken(token string) (*domain.Contract, error) {
	key := fmt.Sprintf("contract:token:%s", token)
	data, err := c.client.Get(c.ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var contract domain.Contract
	if err := json.Unmarshal([]byte(data), &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

// InvalidateContract remove o contrato do cache após qualquer mudança de estado.
func (c *Cache) InvalidateContract(contract *domain.Contract) error {
	if contract.AccessToken == "" {
		return nil
	}
	key := fmt.Sprintf("contract:token:%s", contract.AccessToken)
	return c.client.Del(c.ctx, key).Err()
}

// ========== Cache da conta de envio padrão ==========

const defaultAccountKey = "mail:account:default"

// CacheDefaultMailAccount guarda a conta padrão de envio.
func (c *Cache) CacheDefaultMailAccount(account *domain.MailAccount, ttl time.Duration) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, defaultAccountKey, data, ttl).Err()
}

// GetCachedDefaultMailAccount busca a conta padrão no cache.
func (c *Cache) GetCachedDefaultMailAccount() (*domain.MailAccount, error) {
	data, err := c.client.Get(c.ctx, defaultAccountKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var account domain.MailAccount
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// InvalidateDefaultMailAccount remove a conta padrão do cache.
func (c *Cache) InvalidateDefaultMailAccount() error {
	return c.client.Del(c.ctx, defaultAccountKey).Err()
}

// ========== Contadores de limitação de taxa ==========

// IncrementRateLimit incrementa o contador atomicamente; a primeira escrita
// da janela define a expiração da chave.
func (c *Cache) IncrementRateLimit(key string, window time.Duration) (int64, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(c.ctx, redisKey)
	pipe.ExpireNX(c.ctx, redisKey, window)
	if _, err := pipe.Exec(c.ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// GetRateLimit devolve o contador atual da chave.
func (c *Cache) GetRateLimit(key string) (int64, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	count, err := c.client.Get(c.ctx, redisKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
