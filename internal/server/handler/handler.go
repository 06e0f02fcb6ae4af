package handler

import (
	"errors"

	"go.uber.org/zap"

	"github.com/palemoky/ludo-rooms/internal/apperrors"
	"github.com/palemoky/ludo-rooms/internal/game/relay"
	"github.com/palemoky/ludo-rooms/internal/game/room"
	"github.com/palemoky/ludo-rooms/internal/protocol"
	"github.com/palemoky/ludo-rooms/internal/protocol/codec"
	"github.com/palemoky/ludo-rooms/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server      types.ServerInterface
	RoomManager *room.RoomManager
	Relay       *relay.Relay
	Logger      *zap.Logger
}

// Handler 消息处理器
type Handler struct {
	server      types.ServerInterface
	roomManager *room.RoomManager
	relay       *relay.Relay
	logger      *zap.Logger
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		server:      deps.Server,
		roomManager: deps.RoomManager,
		relay:       deps.Relay,
		logger:      logger,
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgCreateRoom: h.handleCreateRoom,
		protocol.MsgJoinRoom:   h.handleJoinRoom,
		protocol.MsgLeaveRoom:  func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },

		// 对局事件
		protocol.MsgRollDice:   h.handleRollDice,
		protocol.MsgTokenMoved: h.handleTokenMoved,
		protocol.MsgTokenReset: h.handleTokenReset,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	h.logger.Warn("⚠️  未知消息类型",
		zap.String("type", string(msg.Type)),
		zap.String("session", client.GetID()),
		zap.Int("payload_bytes", len(msg.Payload)),
	)
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// sendError 把业务错误转换为 error 事件发给请求方
func (h *Handler) sendError(client types.ClientInterface, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		client.SendMessage(codec.NewErrorMessageWithText(gameErr.Code, gameErr.Message))
		return
	}
	h.logger.Error("处理请求失败", zap.String("session", client.GetID()), zap.Error(err))
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknown))
}
