package server

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
)

const monitorInterval = 30 * time.Second

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopMonitor:
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		s.logger.Info("📊 [监控]",
			zap.Int("online", s.GetOnlineCount()),
			zap.Int("rooms", s.roomManager.RoomCount()),
			zap.Int("active_rooms", s.roomManager.GetActiveGamesCount()),
			zap.Int("goroutines", runtime.NumGoroutine()),
			zap.String("conns", fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections)),
			zap.Float64("mem_mb", float64(m.Alloc)/1024/1024),
		)
	}
}

// EnterMaintenanceMode 进入维护模式，拒绝新连接以及创建/加入房间
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	// 通知大厅用户
	s.BroadcastToLobby(codec.NewErrorMessage(protocol.ErrCodeServerMaintenance))

	s.logger.Info("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// Shutdown 优雅关闭：维护模式 → 关闭 HTTP → 断开所有连接 → 刷新镜像 → 关闭 Redis
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.shutdownOnce.Do(func() {
		s.EnterMaintenanceMode()
		close(s.stopMonitor)
		s.rateLimiter.Stop()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("关闭 HTTP 服务失败: %w", err))
			}
		}

		// 关闭所有客户端连接
		s.clientsMu.RLock()
		for _, client := range s.clients {
			client.Close()
		}
		s.clientsMu.RUnlock()

		if s.mirror != nil {
			if err := s.mirror.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("刷新 Redis 镜像失败: %w", err))
			}
		}
		if s.store != nil {
			if err := s.store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("关闭 Redis 失败: %w", err))
			}
		}

		s.logger.Info("服务器已关闭")
	})

	return errors.Join(errs...)
}
