package server

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 手动推进的时钟
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestRateLimiter(t *testing.T, perSec, perMin int, ban time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	rl := NewRateLimiter(perSec, perMin, ban, nil)
	t.Cleanup(rl.Stop)
	clock := newFakeClock()
	rl.now = clock.Now
	return rl, clock
}

func TestWindow_Hit(t *testing.T) {
	t.Parallel()

	var w window
	now := time.Unix(100, 0)
	assert.Equal(t, 1, w.hit(now, time.Second))
	assert.Equal(t, 2, w.hit(now.Add(500*time.Millisecond), time.Second))
	assert.Equal(t, 1, w.hit(now.Add(time.Second), time.Second))
}

func TestRateLimiter_PerSecond(t *testing.T) {
	t.Parallel()

	rl, clock := newTestRateLimiter(t, 3, 100, time.Minute)

	for i := range 3 {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.IsBanned("1.2.3.4"))

	// 其他 IP 不受影响
	assert.True(t, rl.Allow("5.6.7.8"))
	assert.False(t, rl.IsBanned("5.6.7.8"))

	// 封禁期内即使窗口已过也拒绝
	clock.Advance(30 * time.Second)
	assert.False(t, rl.Allow("1.2.3.4"))

	clock.Advance(31 * time.Second)
	assert.False(t, rl.IsBanned("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
}

func TestRateLimiter_PerMinute(t *testing.T) {
	t.Parallel()

	rl, clock := newTestRateLimiter(t, 10, 5, time.Minute)

	for i := range 5 {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d", i)
		clock.Advance(2 * time.Second)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.IsBanned("1.2.3.4"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	t.Parallel()

	rl, clock := newTestRateLimiter(t, 1, 100, time.Hour)

	assert.True(t, rl.Allow("idle"))
	assert.True(t, rl.Allow("banned"))
	assert.False(t, rl.Allow("banned"))

	clock.Advance(limiterIdleTTL + time.Second)
	assert.Equal(t, 1, rl.sweep())
	assert.True(t, rl.IsBanned("banned"))
	assert.False(t, rl.IsBanned("idle"))
}

func TestRateLimiter_Concurrency(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1000, 10000, time.Minute, nil)
	t.Cleanup(rl.Stop)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			ip := fmt.Sprintf("10.0.0.%d", i%5)
			for range 10 {
				rl.Allow(ip)
				rl.IsBanned(ip)
			}
		})
	}
	wg.Wait()

	rl.Stop()
	rl.Stop()
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(4)
	clock := newFakeClock()
	ml.now = clock.Now

	expect := []struct{ allowed, warning bool }{
		{true, false},
		{true, false},
		{true, true}, // 超过一半额度
		{true, true},
		{false, true},
		{false, true},
	}
	for i, want := range expect {
		allowed, warning := ml.AllowMessage("s1")
		assert.Equal(t, want.allowed, allowed, "message %d", i)
		assert.Equal(t, want.warning, warning, "message %d", i)
	}
	assert.Equal(t, 2, ml.Strikes("s1"))
	assert.Zero(t, ml.Strikes("s2"))

	clock.Advance(time.Second)
	allowed, warning := ml.AllowMessage("s1")
	assert.True(t, allowed)
	assert.False(t, warning)
	assert.Equal(t, 2, ml.Strikes("s1"), "超限次数跨窗口保留")

	ml.Forget("s1")
	assert.Zero(t, ml.Strikes("s1"))
}

func TestMessageRateLimiter_SmallLimit(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(1)
	allowed, warning := ml.AllowMessage("s1")
	assert.True(t, allowed)
	assert.False(t, warning)

	allowed, _ = ml.AllowMessage("s1")
	assert.False(t, allowed)
}

func TestIPFilter(t *testing.T) {
	t.Parallel()

	f := NewIPFilter("192.168.1.100", "10.0.0.0/8", "::ffff:172.16.0.1", "2001:db8::/32", "not-an-ip", " ")

	tests := []struct {
		ip      string
		allowed bool
	}{
		{"192.168.1.100", false},
		{"192.168.1.101", true},
		{"10.20.30.40", false},
		{"11.0.0.1", true},
		{"172.16.0.1", false},
		{"::ffff:192.168.1.100", false},
		{"2001:db8::1", false},
		{"2001:db9::1", true},
		{"not-an-ip", false},
		{"garbage", true},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.allowed, f.IsAllowed(tt.ip))
		})
	}

	assert.True(t, NewIPFilter().IsAllowed("192.168.1.100"))
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"direct", "192.168.1.1:12345", nil, "192.168.1.1"},
		{"forwarded single", "10.0.0.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "203.0.113.1"},
		{"forwarded chain takes client", "10.0.0.1:12345", map[string]string{"X-Forwarded-For": " 203.0.113.1 , 198.51.100.1"}, "203.0.113.1"},
		{"real ip", "10.0.0.1:12345", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"forwarded wins over real ip", "10.0.0.1:12345", map[string]string{
			"X-Forwarded-For": "203.0.113.1",
			"X-Real-IP":       "203.0.113.7",
		}, "203.0.113.1"},
		{"ipv6", "[::1]:8080", nil, "::1"},
		{"no port", "192.168.1.1", nil, "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/ws", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"https://ludo.example/", "HTTP://Localhost:3000", "*.games.example"})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"", true},
		{"https://ludo.example", true},
		{"http://localhost:3000", true},
		{"https://play.games.example", true},
		{"https://a.b.games.example:8443", true},
		{"https://games.example", false},
		{"https://evilgames.example", false},
		{"https://evil.example", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.allowed, oc.Check(r))
		})
	}

	all := NewOriginChecker([]string{"*"})
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://anything.example")
	require.True(t, all.Check(r))
}
