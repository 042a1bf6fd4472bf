package ws

import (
	"sync"

	"github.com/Znbmels/visa/internal/logger"
)

// Event - исходящее событие для клиента
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type WebSocketManager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan any
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan any),
	}
}

func (manager *WebSocketManager) Run() {
	for {
		select {
		case client := <-manager.register:
			manager.mu.Lock()
			// Одно соединение на пользователя: старое вытесняется
			if old, ok := manager.clients[client.ID]; ok {
				close(old.Send)
			}
			manager.clients[client.ID] = client
			total := len(manager.clients)
			manager.mu.Unlock()
			logger.Debug("WebSocket client registered", "user_id", client.ID, "total", total)

		case client := <-manager.unregister:
			manager.mu.Lock()
			if current, ok := manager.clients[client.ID]; ok && current == client {
				close(client.Send)
				delete(manager.clients, client.ID)
			}
			total := len(manager.clients)
			manager.mu.Unlock()
			logger.Debug("WebSocket client unregistered", "user_id", client.ID, "total", total)

		case message := <-manager.broadcast:
			manager.broadcastMessage(message)
		}
	}
}

// SendToUser отправляет событие конкретному пользователю, если он подключен.
func (manager *WebSocketManager) SendToUser(userID string, message any) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	if client, ok := manager.clients[userID]; ok {
		select {
		case client.Send <- message:
		default:
			// Канал заполнен, клиент отключается
			go func() {
				manager.unregister <- client
			}()
		}
	}
}

// Broadcast отправляет событие всем подключенным клиентам.
func (manager *WebSocketManager) Broadcast(message any) {
	manager.broadcast <- message
}

func (manager *WebSocketManager) broadcastMessage(message any) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	for userID, client := range manager.clients {
		select {
		case client.Send <- message:
		default:
			go func(c *Client) {
				manager.unregister <- c
			}(client)
			logger.Debug("WebSocket client dropped, send channel full", "user_id", userID)
		}
	}
}

// GetClientCount возвращает количество подключенных клиентов
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients)
}

// IsClientConnected проверяет, подключен ли пользователь
func (manager *WebSocketManager) IsClientConnected(userID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	_, exists := manager.clients[userID]
	return exists
}
