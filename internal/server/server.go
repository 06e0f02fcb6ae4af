package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/config"
	"github.com/palemoky/ludo-rooms/internal/game/dice"
	"github.com/palemoky/ludo-rooms/internal/game/relay"
	"github.com/palemoky/ludo-rooms/internal/game/room"
	"github.com/palemoky/ludo-rooms/internal/server/handler"
	"github.com/palemoky/ludo-rooms/internal/storage"
	"github.com/palemoky/ludo-rooms/internal/types"
)

// Server WebSocket 服务器
type Server struct {
	config *config.Config
	logger *zap.Logger

	// 可选的 Redis 镜像
	store  *storage.RedisStore
	mirror *storage.Mirror

	roomManager *room.RoomManager
	handler     *handler.Handler
	diceSource  dice.Source
	upgrader    websocket.Upgrader

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	httpServer   *http.Server
	stopMonitor  chan struct{}
	shutdownOnce sync.Once
}

// Option 服务器可选项
type Option func(*Server)

// WithDiceSource 替换骰子随机源
func WithDiceSource(src dice.Source) Option {
	return func(s *Server) {
		s.diceSource = src
	}
}

// NewServer 创建服务器实例，配置了 Redis 地址时启用镜像
func NewServer(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		config:  cfg,
		logger:  logger,
		clients: make(map[string]*Client),
		// 初始化安全组件
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.MaxPerMinute,
			cfg.Security.RateLimit.BanDurationTime(),
			logger,
		),
		originChecker:  NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(cfg.Security.MessageLimit.MaxPerSecond),
		ipFilter:       NewIPFilter(cfg.Security.BlockedIPs...),
		// 初始化连接控制
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		stopMonitor:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	// 来源验证在升级前单独完成
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	var recorder types.Recorder
	if cfg.Redis.Enabled() {
		if err := s.connectRedis(); err != nil {
			logger.Warn("⚠️ Redis 不可用，镜像已禁用", zap.Error(err))
		} else {
			recorder = s.mirror
		}
	}

	s.roomManager = room.NewRoomManager(recorder, logger.Named("room"))
	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
		Relay:       relay.New(s.roomManager, s.diceSource, recorder, logger.Named("relay")),
		Logger:      logger.Named("handler"),
	})

	logger.Info("🔒 安全配置",
		zap.Int("conn_per_second", cfg.Security.RateLimit.MaxPerSecond),
		zap.Int("msg_per_second", cfg.Security.MessageLimit.MaxPerSecond),
		zap.Int("max_connections", cfg.Server.MaxConnections),
		zap.Int("blocked_ips", len(cfg.Security.BlockedIPs)),
	)

	return s, nil
}

// connectRedis 连接 Redis 并启动镜像，清理上次运行遗留的房间快照
func (s *Server) connectRedis() error {
	cfg := s.config.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	store := storage.NewRedisStore(rdb, cfg.RoomTTLDuration())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis 连接失败: %w", err)
	}

	// 连接都已断开，旧快照没有意义
	ids, err := store.GetAllRoomIDs(ctx)
	if err != nil {
		s.logger.Warn("读取遗留房间失败", zap.Error(err))
	}
	for _, id := range ids {
		if data, err := store.LoadRoom(ctx, id); err != nil {
			s.logger.Warn("读取遗留房间失败", zap.String("room", id), zap.Error(err))
		} else if data != nil {
			s.logger.Debug("丢弃遗留房间",
				zap.String("room", id),
				zap.String("state", data.State),
				zap.Int("players", len(data.Players)),
			)
		}
		if err := store.DeleteRoom(ctx, id); err != nil {
			s.logger.Warn("清理遗留房间失败", zap.String("room", id), zap.Error(err))
		}
	}
	if len(ids) > 0 {
		s.logger.Info("🧹 已清理遗留房间快照", zap.Int("count", len(ids)))
	}

	s.store = store
	s.mirror = storage.NewMirror(store, 0, s.logger.Named("mirror"))
	s.logger.Info("📦 Redis 镜像已启用", zap.String("addr", cfg.Addr))
	return nil
}

// Handler 返回 HTTP 路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	if dir := s.config.Server.StaticDir; dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}
	return mux
}

// Start 启动服务器，阻塞直到关闭
func (s *Server) Start() error {
	addr := s.config.Server.Addr()

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// 启动监控 goroutine
	go s.monitorStats()

	s.logger.Info("🚀 服务器启动",
		zap.String("ws", fmt.Sprintf("ws://%s/ws", addr)),
		zap.String("static_dir", s.config.Server.StaticDir),
		zap.Int("cpus", runtime.NumCPU()),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// RoomManager 返回房间管理器
func (s *Server) RoomManager() *room.RoomManager {
	return s.roomManager
}
