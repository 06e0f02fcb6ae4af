// Package codec 负责消息的 JSON 编解码
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/palemoky/ludo-rooms/internal/protocol"
)

// ErrEmptyPayload 消息缺少 payload
var ErrEmptyPayload = errors.New("empty payload")

// NewMessage 创建一个新消息
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	var data json.RawMessage
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("编码 %s 失败: %w", msgType, err)
		}
	}
	return &protocol.Message{
		Type:    msgType,
		Payload: data,
	}, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Encode 将消息编码为 JSON 字节
// 返回的切片归调用方所有
func Encode(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}

	// 去掉 Encoder 追加的换行符
	data := buf.Bytes()
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// ErrMissingType 消息缺少 type 字段
var ErrMissingType = errors.New("missing message type")

// Decode 从 JSON 字节解码消息
func Decode(data []byte) (*protocol.Message, error) {
	var msg protocol.Message
	if err := DecodeInto(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeInto 解码到已有的消息对象，配合 GetMessage/PutMessage 复用
func DecodeInto(data []byte, msg *protocol.Message) error {
	if err := json.Unmarshal(data, msg); err != nil {
		return err
	}
	if msg.Type == "" {
		return ErrMissingType
	}
	return nil
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	if len(msg.Payload) == 0 {
		return nil, ErrEmptyPayload
	}
	var payload T
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	msg, _ := NewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
	return msg
}
