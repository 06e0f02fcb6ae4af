// Package dice 提供骰子随机源
package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Faces 骰子面数
const Faces = 6

// Source 随机源，实现必须并发安全
type Source interface {
	// Intn 返回 [0, n) 内的随机数，n 必须大于 0
	Intn(n int) int
}

// Roll 掷一次骰子，返回 [1, Faces]
func Roll(src Source) int {
	return src.Intn(Faces) + 1
}

type cryptoSource struct{}

// NewCryptoSource 基于 crypto/rand 的随机源
func NewCryptoSource() Source {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}

type globalSource struct{}

// NewSource 默认随机源，使用 math/rand/v2 的全局生成器
func NewSource() Source {
	return globalSource{}
}

func (globalSource) Intn(n int) int {
	return mrand.IntN(n)
}

type mathSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource 基于固定种子的伪随机源，同一种子产生同一序列
func NewSeededSource(seed uint64) Source {
	return &mathSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *mathSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Sequence 按顺序循环返回预设值的随机源，用于测试
type Sequence struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewSequence 创建循环序列随机源，values 为 Intn 的原始返回值
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: values}
}

func (s *Sequence) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)] % n
	s.next++
	return v
}
