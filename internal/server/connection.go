package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		s.logger.Info("🔧 维护模式，拒绝新连接", zap.String("ip", clientIP))
		http.Error(w, "Server is under maintenance, please try again later",
			http.StatusServiceUnavailable)
		return
	}

	// 封禁期内的 IP 不占用连接名额
	if s.rateLimiter.IsBanned(clientIP) {
		s.logger.Debug("🚫 IP 封禁中", zap.String("ip", clientIP))
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	// 连接数限制检查，信号量在读协程退出时释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		s.logger.Warn("🚫 达到最大连接数限制", zap.Int("max", s.maxConnections), zap.String("ip", clientIP))
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}
	release := func() { <-s.semaphore }

	if !s.ipFilter.IsAllowed(clientIP) {
		release()
		s.logger.Warn("🚫 IP 被过滤器拒绝", zap.String("ip", clientIP))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if !s.originChecker.Check(r) {
		release()
		s.logger.Warn("🚫 来源验证失败", zap.String("origin", r.Header.Get("Origin")), zap.String("ip", clientIP))
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	if !s.rateLimiter.Allow(clientIP) {
		release()
		s.logger.Warn("🚫 请求过于频繁", zap.String("ip", clientIP))
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		release()
		s.logger.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	client := NewClient(s, conn, clientIP)
	s.registerClient(client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		SessionID: client.ID,
	}))

	s.logger.Info("✅ 会话已连接", zap.String("session", client.ID), zap.String("ip", clientIP))

	go func() {
		defer release()
		client.ReadPump()
	}()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleStats 返回在线与房间统计，启用 Redis 时附带累计数据
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	payload := protocol.StatsPayload{
		OnlineCount: s.GetOnlineCount(),
		RoomCount:   s.roomManager.RoomCount(),
		ActiveRooms: s.roomManager.GetActiveGamesCount(),
		Rooms:       s.roomManager.GetRoomList(),
	}

	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if stats, err := s.store.GetStats(ctx); err != nil {
			s.logger.Warn("读取统计失败", zap.Error(err))
		} else {
			payload.GamesStarted = stats.GamesStarted
			payload.DiceRolls = stats.DiceRolls
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("写入统计失败", zap.Error(err))
	}
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		s.logger.Info("❌ 会话已断开", zap.String("session", client.ID))
	}
}
