package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/logger"
	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	// 发送缓冲区大小
	sendBufferSize = 256

	// 超限次数达到该值后断开连接
	maxRateWarnings = 5
)

// Client 代表一个 WebSocket 连接（一个会话）
type Client struct {
	ID     string // 会话 ID
	RoomID string // 当前所在房间
	IP     string // 客户端 IP 地址

	server *Server
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn, ip string) *Client {
	id := uuid.New().String()
	return &Client{
		ID:     id,
		IP:     ip,
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: s.logger.With(zap.String("session", id)),
	}
}

// ReadPump 从 WebSocket 读取消息，退出时处理断线
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(c.logger, r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("读取错误", zap.Error(err))
			}
			return
		}

		// 消息速率限制检查
		allowed, warning := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			c.logger.Warn("⚠️ 消息过于频繁", zap.String("ip", c.IP))
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeRateLimit))
			if c.server.messageLimiter.Strikes(c.ID) > maxRateWarnings {
				c.logger.Warn("🚫 多次超速，断开连接", zap.String("ip", c.IP))
				return
			}
			continue
		}
		if warning {
			c.logger.Debug("消息频率接近上限", zap.String("ip", c.IP))
		}

		msg := codec.GetMessage()
		if err := codec.DecodeInto(message, msg); err != nil {
			codec.PutMessage(msg)
			c.logger.Debug("消息解析错误", zap.Error(err))
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump 向 WebSocket 写入消息并定时发送 ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(c.logger, r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端，不阻塞
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		c.logger.Error("消息编码错误", zap.String("type", string(msg.Type)), zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// 发送缓冲区已满，关闭连接
		c.logger.Warn("发送缓冲区已满，关闭连接")
		c.closed = true
		close(c.send)
	}
}

// handleDisconnect 处理断开连接：离开房间并注销
func (c *Client) handleDisconnect() {
	c.server.roomManager.HandleDisconnect(c)
	c.server.messageLimiter.Forget(c.ID)
	c.server.unregisterClient(c)
	c.Close()
}

// Close 关闭客户端发送通道，写协程随后关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetID 获取会话 ID
func (c *Client) GetID() string {
	return c.ID
}

// SetRoom 设置客户端所在房间
func (c *Client) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.RoomID = roomID
}

// GetRoom 获取客户端所在房间
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.RoomID
}
