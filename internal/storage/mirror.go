package storage

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store 镜像写入的目标存储
type Store interface {
	SaveRoom(ctx context.Context, data *RoomData) error
	DeleteRoom(ctx context.Context, roomID string) error
	IncrGamesStarted(ctx context.Context) error
	RecordDiceRoll(ctx context.Context, value int) error
}

const (
	defaultQueueSize = 1024
	opTimeout        = 3 * time.Second
)

type mirrorOp struct {
	name string
	fn   func(ctx context.Context) error
}

// Mirror 将房间快照和统计异步、按顺序写入 Store
// 调用方永远不会被阻塞，队列满时丢弃并记录警告
type Mirror struct {
	store  Store
	logger *zap.Logger
	ops    chan mirrorOp
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewMirror 创建镜像并启动写入协程
func NewMirror(store Store, queueSize int, logger *zap.Logger) *Mirror {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mirror{
		store:  store,
		logger: logger,
		ops:    make(chan mirrorOp, queueSize),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Mirror) run() {
	defer close(m.done)
	for op := range m.ops {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		if err := op.fn(ctx); err != nil {
			m.logger.Warn("Redis 镜像写入失败", zap.String("op", op.name), zap.Error(err))
		}
		cancel()
	}
}

func (m *Mirror) enqueue(name string, fn func(ctx context.Context) error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.ops <- mirrorOp{name: name, fn: fn}:
	default:
		m.logger.Warn("Redis 镜像队列已满，丢弃写入", zap.String("op", name))
	}
}

// RoomSaved 保存房间快照
func (m *Mirror) RoomSaved(data *RoomData) {
	m.enqueue("save_room", func(ctx context.Context) error {
		return m.store.SaveRoom(ctx, data)
	})
}

// RoomDeleted 删除房间快照
func (m *Mirror) RoomDeleted(roomID string) {
	m.enqueue("delete_room", func(ctx context.Context) error {
		return m.store.DeleteRoom(ctx, roomID)
	})
}

// GameStarted 记录开局
func (m *Mirror) GameStarted(string) {
	m.enqueue("games_started", m.store.IncrGamesStarted)
}

// DiceRolled 记录掷骰结果
func (m *Mirror) DiceRolled(value int) {
	m.enqueue("dice_roll", func(ctx context.Context) error {
		return m.store.RecordDiceRoll(ctx, value)
	})
}

// Close 停止接收新写入，等待队列写完或 ctx 结束
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.ops)
	}
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
