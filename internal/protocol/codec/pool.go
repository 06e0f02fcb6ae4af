package codec

import (
	"bytes"
	"sync"

	"github.com/palemoky/ludo-rooms/internal/protocol"
)

// 读循环与编码路径上复用的对象池
var (
	messagePool = sync.Pool{
		New: func() any { return new(protocol.Message) },
	}

	bufferPool = sync.Pool{
		New: func() any { return new(bytes.Buffer) },
	}
)

// GetMessage 从池中取出一个空消息
func GetMessage() *protocol.Message {
	return messagePool.Get().(*protocol.Message)
}

// PutMessage 清空后归还消息
// 归还后调用方不得再持有 msg 或其 Payload
func PutMessage(msg *protocol.Message) {
	if msg == nil {
		return
	}
	*msg = protocol.Message{}
	messagePool.Put(msg)
}

// GetBuffer 从池中取出缓冲区
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// PutBuffer 重置后归还缓冲区，保留容量
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
