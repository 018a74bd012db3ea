package websocket

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
	"github.com/Davilys/webmarcas1-sub006/internal/monitoring"
)

// ContractStore interface de consulta de contratos usada na autenticação
type ContractStore interface {
	GetContractByToken(token string) (*domain.Contract, error)
}

// JWTClaims declarações do JWT
type JWTClaims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// upgraderFactory cria o upgrader WebSocket com validação de Origin
func upgraderFactory(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			for _, origin := range allowedOrigins {
				if origin == "*" {
					return true
				}
			}

			requestOrigin := r.Header.Get("Origin")
			if requestOrigin == "" {
				// Sem Origin, assume requisição de mesma origem
				return true
			}

			for _, origin := range allowedOrigins {
				if requestOrigin == origin {
					return true
				}
			}

			return false
		},
	}
}

// MessageType tipos de mensagem do WebSocket
type MessageType string

const (
	MessageTypeContractEvent MessageType = "contract_event"
	MessageTypePing          MessageType = "ping"
	MessageTypePong          MessageType = "pong"
	MessageTypeSubscribe     MessageType = "subscribe"
	MessageTypeUnsubscribe   MessageType = "unsubscribe"
	MessageTypeSubscribed    MessageType = "subscribed"
	MessageTypeError         MessageType = "error"
)

// Assinantes com esta permissão recebem eventos de todos os contratos.
const wildcardPermission = "*"

// Message estrutura das mensagens do WebSocket
type Message struct {
	Type       MessageType     `json:"type"`
	ContractID string          `json:"contractId,omitempty"`
	Event      string          `json:"event,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Client representa uma conexão WebSocket
type Client struct {
	ID          string
	conn        *websocket.Conn
	send        chan []byte
	hub         *Hub
	contractIDs map[string]bool // contratos assinados pelo cliente
	mu          sync.RWMutex
	log         *zap.Logger
	// Identidade autenticada
	UserID      string   // ID do usuário (autenticação JWT)
	ContractID  string   // ID do contrato (autenticação por token de acesso)
	IsContract  bool     // true quando autenticado pelo token do contrato
	Permissions []string // contratos acessíveis; "*" libera todos
}

// Hub gerencia todas as conexões WebSocket
type Hub struct {
	clients        map[string]*Client            // clientID -> Client
	contracts      map[string]map[string]*Client // contractID -> clientID -> Client
	register       chan *Client
	unregister     chan *Client
	broadcast      chan *BroadcastMessage
	mu             sync.RWMutex
	log            *zap.Logger
	metrics        *monitoring.Metrics
	allowedOrigins []string
	// Autenticação
	jwtSecret     string
	contractStore ContractStore
}

// BroadcastMessage mensagem de broadcast
type BroadcastMessage struct {
	ContractID string
	Message    *Message
}

// NewHub cria o Hub de WebSocket
//
// Parâmetros:
//   - allowedOrigins: lista de Origins aceitos na abertura da conexão
//   - jwtSecret: chave usada para validar tokens JWT do painel
//   - contractStore: consulta de contratos para autenticação por token de acesso
//   - metrics: métricas do sistema (opcional)
//   - log: logger estruturado (opcional)
func NewHub(allowedOrigins []string, jwtSecret string, contractStore ContractStore, metrics *monitoring.Metrics, log *zap.Logger) *Hub {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Hub{
		clients:        make(map[string]*Client),
		contracts:      make(map[string]map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan *BroadcastMessage, 256),
		log:            log,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
		jwtSecret:      jwtSecret,
		contractStore:  contractStore,
	}
}

// Run inicia o laço principal do Hub
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("websocket hub stopped")
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			h.updateClientGauge(total)
			h.log.Info("client registered", zap.String("id", client.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				// Remove o cliente de todas as inscrições
				for contractID := range client.contractIDs {
					if clients, exists := h.contracts[contractID]; exists {
						delete(clients, client.ID)
						if len(clients) == 0 {
							delete(h.contracts, contractID)
						}
					}
				}
				delete(h.clients, client.ID)
				close(client.send)
				h.log.Info("client unregistered", zap.String("id", client.ID))
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.updateClientGauge(total)

		case msg := <-h.broadcast:
			h.broadcastToContract(msg.ContractID, msg.Message)

		case <-ticker.C:
			h.pingAllClients()
		}
	}
}

func (h *Hub) updateClientGauge(total int) {
	if h.metrics != nil {
		h.metrics.WebsocketClients.Set(float64(total))
	}
}

// PublishContractEvent publica um evento de contrato para os assinantes
//
// Usado pelos serviços para notificar acessos ao link e assinaturas
// concluídas em tempo real.
func (h *Hub) PublishContractEvent(contractID, eventType string, data map[string]any) {
	payload, err := json.Marshal(data)
	if err != nil {
		h.log.Error("failed to marshal contract event", zap.Error(err))
		return
	}

	msg := &Message{
		Type:       MessageTypeContractEvent,
		ContractID: contractID,
		Event:      eventType,
		Data:       payload,
		Timestamp:  time.Now(),
	}

	h.log.Info("broadcasting contract event",
		zap.String("contractID", contractID),
		zap.String("event", eventType))

	select {
	case h.broadcast <- &BroadcastMessage{ContractID: contractID, Message: msg}:
	default:
		// Canal de broadcast cheio, evento descartado
		h.log.Warn("broadcast channel full, dropping contract event",
			zap.String("contractID", contractID),
			zap.String("event", eventType))
	}
}

// broadcastToContract envia a mensagem aos assinantes do contrato
//
// Clientes inscritos no curinga "*" (painel administrativo) recebem
// os eventos de todos os contratos.
func (h *Hub) broadcastToContract(contractID string, msg *Message) {
	h.mu.RLock()
	targets := make(map[string]*Client, len(h.contracts[contractID]))
	for id, client := range h.contracts[contractID] {
		targets[id] = client
	}
	for id, client := range h.contracts[wildcardPermission] {
		targets[id] = client
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal message", zap.Error(err))
		return
	}

	for _, client := range targets {
		select {
		case client.send <- data:
		default:
			// Cliente bloqueado, pula
			h.log.Warn("client channel blocked, skipping", zap.String("clientID", client.ID))
		}
	}
}

// pingAllClients envia ping a todos os clientes
func (h *Hub) pingAllClients() {
	msg := &Message{
		Type:      MessageTypePing,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Pula clientes bloqueados
		}
	}
}

// closeAllClients fecha todas as conexões
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[string]*Client)
	h.contracts = make(map[string]map[string]*Client)
	h.updateClientGauge(0)
}

// authenticateClient autentica o cliente da conexão
func (h *Hub) authenticateClient(c *gin.Context) (*Client, error) {
	// Token via query string ou cabeçalho
	token := c.Query("token")
	if token == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
	}

	if token == "" {
		return nil, errors.New("missing authentication token")
	}

	// Tenta autenticação JWT (painel administrativo)
	if userID, email, err := h.validateJWT(token); err == nil {
		client := &Client{
			ID:          generateClientID(),
			UserID:      userID,
			IsContract:  false,
			Permissions: []string{wildcardPermission},
			contractIDs: make(map[string]bool),
			log:         h.log,
		}

		h.log.Info("JWT authentication successful",
			zap.String("userID", userID),
			zap.String("email", email))

		return client, nil
	}

	// Tenta autenticação pelo token de acesso do contrato (página de assinatura)
	if contractID, err := h.validateContractToken(token); err == nil {
		client := &Client{
			ID:          generateClientID(),
			ContractID:  contractID,
			IsContract:  true,
			Permissions: []string{contractID},
			contractIDs: make(map[string]bool),
			log:         h.log,
		}

		h.log.Info("contract token authentication successful",
			zap.String("contractID", contractID))

		return client, nil
	}

	return nil, errors.New("invalid authentication token")
}

// validateJWT valida um token JWT
func (h *Hub) validateJWT(tokenString string) (userID, email string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.jwtSecret), nil
	})

	if err != nil {
		return "", "", err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims.UserID, claims.Email, nil
	}

	return "", "", errors.New("invalid token claims")
}

// validateContractToken valida o token de acesso de um contrato
func (h *Hub) validateContractToken(token string) (string, error) {
	if h.contractStore == nil {
		return "", errors.New("invalid contract token")
	}

	contract, err := h.contractStore.GetContractByToken(token)
	if err != nil || contract == nil || contract.AccessToken == "" {
		return "", errors.New("invalid contract token")
	}

	if subtle.ConstantTimeCompare([]byte(contract.AccessToken), []byte(token)) != 1 {
		return "", errors.New("invalid contract token")
	}

	return contract.ID, nil
}

// HandleWebSocket trata a abertura de conexões WebSocket
func HandleWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := upgraderFactory(hub.allowedOrigins)

	return func(c *gin.Context) {
		client, err := hub.authenticateClient(c)
		if err != nil {
			hub.log.Warn("websocket authentication failed",
				zap.Error(err),
				zap.String("remote_addr", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Error("failed to upgrade connection",
				zap.Error(err),
				zap.String("origin", c.Request.Header.Get("Origin")),
				zap.String("remote_addr", c.ClientIP()))
			return
		}

		client.conn = conn
		client.hub = hub
		client.send = make(chan []byte, 256)

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump processa as mensagens recebidas do cliente
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Error("websocket error", zap.Error(err))
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump envia mensagens ao cliente
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.conn.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage trata uma mensagem recebida
func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeSubscribe:
		c.subscribeContract(msg.ContractID)
	case MessageTypeUnsubscribe:
		c.unsubscribeContract(msg.ContractID)
	case MessageTypePong:
		// Pong do cliente, renova o prazo de leitura
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	default:
		c.log.Warn("unknown message type", zap.String("type", string(msg.Type)))
	}
}

// subscribeContract inscreve o cliente nos eventos de um contrato
func (c *Client) subscribeContract(contractID string) {
	if contractID == "" {
		c.sendError("contract ID is required")
		return
	}

	hasPermission := false
	for _, perm := range c.Permissions {
		if perm == wildcardPermission || perm == contractID {
			hasPermission = true
			break
		}
	}

	if !hasPermission {
		c.log.Warn("subscription denied: no permission",
			zap.String("clientID", c.ID),
			zap.String("contractID", contractID),
			zap.Bool("isContract", c.IsContract))
		c.sendError(fmt.Sprintf("no permission to access contract: %s", contractID))
		return
	}

	c.mu.Lock()
	c.contractIDs[contractID] = true
	c.mu.Unlock()

	c.hub.mu.Lock()
	if c.hub.contracts[contractID] == nil {
		c.hub.contracts[contractID] = make(map[string]*Client)
	}
	c.hub.contracts[contractID][c.ID] = c
	c.hub.mu.Unlock()

	c.log.Info("subscribed to contract",
		zap.String("clientID", c.ID),
		zap.String("contractID", contractID),
		zap.String("userID", c.UserID))

	c.sendMessage(&Message{
		Type:       MessageTypeSubscribed,
		ContractID: contractID,
		Timestamp:  time.Now(),
	})
}

// sendError envia uma mensagem de erro ao cliente
func (c *Client) sendError(errMsg string) {
	msg := &Message{
		Type:      MessageTypeError,
		Error:     errMsg,
		Timestamp: time.Now(),
	}
	c.sendMessage(msg)
}

// sendMessage envia uma mensagem ao cliente
func (c *Client) sendMessage(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("failed to marshal message", zap.Error(err))
		return
	}

	select {
	case c.send <- data:
	default:
		c.log.Warn("client channel blocked", zap.String("clientID", c.ID))
	}
}

// unsubscribeContract cancela a inscrição do cliente em um contrato
func (c *Client) unsubscribeContract(contractID string) {
	c.mu.Lock()
	delete(c.contractIDs, contractID)
	c.mu.Unlock()

	c.hub.mu.Lock()
	if clients, exists := c.hub.contracts[contractID]; exists {
		delete(clients, c.ID)
		if len(clients) == 0 {
			delete(c.hub.contracts, contractID)
		}
	}
	c.hub.mu.Unlock()

	c.log.Info("unsubscribed from contract",
		zap.String("clientID", c.ID),
		zap.String("contractID", contractID))
}

// generateClientID gera o identificador do cliente
func generateClientID() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()[:8]
}
