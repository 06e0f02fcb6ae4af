//go:build !production

package testutil

import (
	"sync"

	"github.com/palemoky/ludo-rooms/internal/storage"
)

// RecordingRecorder 记录所有调用的 types.Recorder 实现
type RecordingRecorder struct {
	mu      sync.Mutex
	Saved   []*storage.RoomData
	Deleted []string
	Started []string
	Rolls   []int
}

func (r *RecordingRecorder) RoomSaved(data *storage.RoomData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Saved = append(r.Saved, data)
}

func (r *RecordingRecorder) RoomDeleted(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Deleted = append(r.Deleted, roomID)
}

func (r *RecordingRecorder) GameStarted(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Started = append(r.Started, roomID)
}

func (r *RecordingRecorder) DiceRolled(value int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rolls = append(r.Rolls, value)
}

// Snapshot 返回调用记录的副本
func (r *RecordingRecorder) Snapshot() (saved []*storage.RoomData, deleted, started []string, rolls []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*storage.RoomData(nil), r.Saved...),
		append([]string(nil), r.Deleted...),
		append([]string(nil), r.Started...),
		append([]int(nil), r.Rolls...)
}
