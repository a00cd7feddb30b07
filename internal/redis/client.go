// Package redis persiste o estado do caminhão para consulta por
// ferramentas externas. Toda escrita é de melhor esforço: o caminhão
// continua operando normalmente quando o Redis está fora do ar.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"caminhao_go/internal/config"
	"caminhao_go/pkg/logger"

	"github.com/go-redis/redis/v8"
)

// Client encapsula a conexão com o Redis, aplicando o prefixo de chaves
// configurado e verificando a disponibilidade antes de cada operação.
type Client struct {
	client    *redis.Client
	ctx       context.Context
	prefix    string
	config    config.RedisConfig
	connected bool
	mutex     sync.RWMutex
}

// NewClient cria um novo cliente Redis a partir da configuração
func NewClient(cfg config.RedisConfig) *Client {
	ctx := context.Background()

	// Se o Redis estiver desabilitado, retornar cliente vazio
	if !cfg.Enabled {
		return &Client{
			ctx:       ctx,
			prefix:    cfg.Prefix,
			config:    cfg,
			connected: false,
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Client{
		client: client,
		ctx:    ctx,
		prefix: cfg.Prefix,
		config: cfg,
	}
}

// Connect verifica a conexão com o servidor Redis
func (c *Client) Connect() error {
	if !c.config.Enabled || c.client == nil {
		return nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	if _, err := c.client.Ping(ctx).Result(); err != nil {
		c.connected = false
		return fmt.Errorf("erro ao conectar ao Redis: %w", err)
	}

	c.connected = true
	logger.Infof("Conectado ao Redis em %s:%d", c.config.Host, c.config.Port)
	return nil
}

// IsConnected informa se o cliente está disponível. Depois de uma falha
// de operação, tenta um ping curto para detectar a volta do servidor.
func (c *Client) IsConnected() bool {
	c.mutex.RLock()
	connected := c.connected
	c.mutex.RUnlock()

	if connected {
		return true
	}

	if !c.config.Enabled || c.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(c.ctx, 2*time.Second)
	defer cancel()

	if _, err := c.client.Ping(ctx).Result(); err != nil {
		return false
	}

	c.mutex.Lock()
	c.connected = true
	c.mutex.Unlock()
	return true
}

// markDisconnected registra a falha de uma operação para que a próxima
// chamada revalide a conexão com um ping
func (c *Client) markDisconnected() {
	c.mutex.Lock()
	c.connected = false
	c.mutex.Unlock()
}

// FormatKey aplica o prefixo configurado à chave
func (c *Client) FormatKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// GetContext retorna o contexto base do cliente
func (c *Client) GetContext() context.Context {
	return c.ctx
}

// Pipeline retorna uma pipeline para operações em lote
func (c *Client) Pipeline() redis.Pipeliner {
	return c.client.Pipeline()
}

// Get recupera o valor de uma chave
func (c *Client) Get(key string) (string, error) {
	if !c.IsConnected() {
		return "", fmt.Errorf("Redis não conectado")
	}

	fullKey := c.FormatKey(key)
	return c.client.Get(c.ctx, fullKey).Result()
}

// ZAdd adiciona um membro com pontuação a um conjunto ordenado
func (c *Client) ZAdd(key string, score float64, member interface{}) error {
	if !c.IsConnected() {
		return fmt.Errorf("Redis não conectado")
	}

	fullKey := c.FormatKey(key)
	cmd := c.client.ZAdd(c.ctx, fullKey, &redis.Z{
		Score:  score,
		Member: member,
	})
	if cmd.Err() != nil {
		c.markDisconnected()
	}
	return cmd.Err()
}

// ZRevRange retorna membros em ordem decrescente de pontuação
func (c *Client) ZRevRange(key string, start, stop int64) ([]string, error) {
	if !c.IsConnected() {
		return nil, fmt.Errorf("Redis não conectado")
	}

	fullKey := c.FormatKey(key)
	return c.client.ZRevRange(c.ctx, fullKey, start, stop).Result()
}

// ZRemRangeByRank remove membros por posição no ranking
func (c *Client) ZRemRangeByRank(key string, start, stop int64) (int64, error) {
	if !c.IsConnected() {
		return 0, fmt.Errorf("Redis não conectado")
	}

	fullKey := c.FormatKey(key)
	return c.client.ZRemRangeByRank(c.ctx, fullKey, start, stop).Result()
}

// Close encerra a conexão com o Redis
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
