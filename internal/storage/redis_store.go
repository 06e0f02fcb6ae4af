package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix   = "room:"
	diceStatsKey    = "stats:dice"
	gamesStartedKey = "stats:games_started"

	// 房间数据默认过期时间
	defaultRoomExpiration = 2 * time.Hour
)

// RoomData 房间数据（用于 Redis 序列化）
type RoomData struct {
	ID         string       `json:"id"`
	State      string       `json:"state"`
	MaxPlayers int          `json:"max_players"`
	Players    []PlayerData `json:"players"`
	CreatedAt  int64        `json:"created_at"`
}

// PlayerData 玩家数据
type PlayerData struct {
	SessionID string `json:"session_id"`
	Color     string `json:"color"`
}

// Stats 全局统计
type Stats struct {
	GamesStarted int64
	DiceRolls    map[string]int64 // 点数 → 次数
}

// RedisStore Redis 存储
type RedisStore struct {
	client         *redis.Client
	roomExpiration time.Duration
}

// NewRedisStore 创建 Redis 存储，roomTTL <= 0 时使用默认过期时间
func NewRedisStore(client *redis.Client, roomTTL time.Duration) *RedisStore {
	if roomTTL <= 0 {
		roomTTL = defaultRoomExpiration
	}
	return &RedisStore{client: client, roomExpiration: roomTTL}
}

// --- 房间存储 ---

// SaveRoom 保存房间快照到 Redis
func (rs *RedisStore) SaveRoom(ctx context.Context, data *RoomData) error {
	if data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+data.ID, jsonData, rs.roomExpiration).Err()
}

// LoadRoom 从 Redis 加载房间快照，不存在时返回 nil
func (rs *RedisStore) LoadRoom(ctx context.Context, roomID string) (*RoomData, error) {
	data, err := rs.client.Get(ctx, roomKeyPrefix+roomID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var roomData RoomData
	if err := json.Unmarshal(data, &roomData); err != nil {
		return nil, fmt.Errorf("反序列化房间数据失败: %w", err)
	}

	return &roomData, nil
}

// DeleteRoom 从 Redis 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	return rs.client.Del(ctx, roomKeyPrefix+roomID).Err()
}

// GetAllRoomIDs 获取所有房间号
func (rs *RedisStore) GetAllRoomIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := rs.client.Scan(ctx, cursor, roomKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			ids = append(ids, key[len(roomKeyPrefix):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}

// --- 统计 ---

// IncrGamesStarted 开局数 +1
func (rs *RedisStore) IncrGamesStarted(ctx context.Context) error {
	return rs.client.Incr(ctx, gamesStartedKey).Err()
}

// RecordDiceRoll 记录一次掷骰结果
func (rs *RedisStore) RecordDiceRoll(ctx context.Context, value int) error {
	return rs.client.HIncrBy(ctx, diceStatsKey, strconv.Itoa(value), 1).Err()
}

// GetStats 读取全局统计
func (rs *RedisStore) GetStats(ctx context.Context) (*Stats, error) {
	pipe := rs.client.Pipeline()
	gamesCmd := pipe.Get(ctx, gamesStartedKey)
	diceCmd := pipe.HGetAll(ctx, diceStatsKey)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	stats := &Stats{DiceRolls: make(map[string]int64)}

	games, err := gamesCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	stats.GamesStarted = games

	for face, count := range diceCmd.Val() {
		n, err := strconv.ParseInt(count, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("解析骰子统计 %s 失败: %w", face, err)
		}
		stats.DiceRolls[face] = n
	}

	return stats, nil
}

// Ping 检查连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
