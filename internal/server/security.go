package server

import (
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTTL       = 10 * time.Minute
)

// window 固定窗口计数器
type window struct {
	start time.Time
	count int
}

// hit 计数一次，窗口过期时先重置，返回窗口内的累计次数
func (w *window) hit(now time.Time, size time.Duration) int {
	if now.Sub(w.start) >= size {
		w.start = now
		w.count = 0
	}
	w.count++
	return w.count
}

// --- 连接速率限制 ---

// RateLimiter 按 IP 限制 WebSocket 握手频率，超限后封禁一段时间
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*ipState
	logger  *zap.Logger
	now     func() time.Time

	perSecond int
	perMinute int
	ban       time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type ipState struct {
	second      window
	minute      window
	bannedUntil time.Time
	lastSeen    time.Time
}

// NewRateLimiter 创建连接速率限制器并启动后台清理，调用方负责 Stop
func NewRateLimiter(perSecond, perMinute int, ban time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	rl := &RateLimiter{
		clients:   make(map[string]*ipState),
		logger:    logger,
		now:       time.Now,
		perSecond: perSecond,
		perMinute: perMinute,
		ban:       ban,
		stop:      make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Allow 记录一次握手，返回是否放行
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	st, ok := rl.clients[ip]
	if !ok {
		st = &ipState{}
		rl.clients[ip] = st
	}
	st.lastSeen = now

	if now.Before(st.bannedUntil) {
		return false
	}

	perSec := st.second.hit(now, time.Second)
	perMin := st.minute.hit(now, time.Minute)
	if perSec > rl.perSecond || perMin > rl.perMinute {
		st.bannedUntil = now.Add(rl.ban)
		rl.logger.Warn("⚠️ IP 握手过于频繁，暂时封禁",
			zap.String("ip", ip),
			zap.Int("per_second", perSec),
			zap.Int("per_minute", perMin),
			zap.Duration("ban", rl.ban),
		)
		return false
	}
	return true
}

// IsBanned IP 是否处于封禁期
func (rl *RateLimiter) IsBanned(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	st, ok := rl.clients[ip]
	return ok && rl.now().Before(st.bannedUntil)
}

// Stop 停止后台清理
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep 删除长时间无活动且未封禁的记录，返回删除数量
func (rl *RateLimiter) sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for ip, st := range rl.clients {
		if now.Sub(st.lastSeen) > limiterIdleTTL && !now.Before(st.bannedUntil) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

// --- 消息速率限制 ---

// MessageRateLimiter 限制单个会话每秒的消息数
// 超过一半额度时提示，超过额度时拒绝并记一次超限
type MessageRateLimiter struct {
	mu       sync.Mutex
	sessions map[string]*msgState
	now      func() time.Time

	perSecond int
	warnAt    int
}

type msgState struct {
	win     window
	strikes int
}

// NewMessageRateLimiter 创建消息速率限制器
func NewMessageRateLimiter(perSecond int) *MessageRateLimiter {
	return &MessageRateLimiter{
		sessions:  make(map[string]*msgState),
		now:       time.Now,
		perSecond: perSecond,
		warnAt:    max(perSecond/2, 1),
	}
}

// AllowMessage 记录一条消息，返回是否放行以及是否需要提示客户端
func (ml *MessageRateLimiter) AllowMessage(sessionID string) (allowed, warning bool) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	st, ok := ml.sessions[sessionID]
	if !ok {
		st = &msgState{}
		ml.sessions[sessionID] = st
	}

	switch n := st.win.hit(ml.now(), time.Second); {
	case n > ml.perSecond:
		st.strikes++
		return false, true
	case n > ml.warnAt:
		return true, true
	default:
		return true, false
	}
}

// Strikes 会话累计超限次数
func (ml *MessageRateLimiter) Strikes(sessionID string) int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if st, ok := ml.sessions[sessionID]; ok {
		return st.strikes
	}
	return 0
}

// Forget 连接断开后移除会话记录
func (ml *MessageRateLimiter) Forget(sessionID string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	delete(ml.sessions, sessionID)
}

// --- 来源验证 ---

// OriginChecker 校验 WebSocket 握手的 Origin
// 支持 "*"（全部放行）、完整来源 "https://ludo.example" 和子域名通配 "*.ludo.example"
type OriginChecker struct {
	allowAll bool
	exact    map[string]struct{}
	suffixes []string
}

// NewOriginChecker 创建来源验证器
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{exact: make(map[string]struct{})}
	for _, o := range origins {
		o = strings.ToLower(strings.TrimSpace(o))
		switch {
		case o == "*":
			oc.allowAll = true
		case strings.HasPrefix(o, "*."):
			oc.suffixes = append(oc.suffixes, o[1:])
		case o != "":
			oc.exact[strings.TrimSuffix(o, "/")] = struct{}{}
		}
	}
	return oc
}

// Check 检查请求来源，没有 Origin 头的请求（本地客户端）直接放行
func (oc *OriginChecker) Check(r *http.Request) bool {
	origin := strings.ToLower(r.Header.Get("Origin"))
	if oc.allowAll || origin == "" {
		return true
	}
	if _, ok := oc.exact[origin]; ok {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := u.Hostname()
	for _, suffix := range oc.suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// --- IP 过滤 ---

// IPFilter IP 黑名单，支持单个地址和 CIDR 网段，创建后只读
type IPFilter struct {
	addrs    map[netip.Addr]struct{}
	prefixes []netip.Prefix
	raw      map[string]struct{} // 无法解析的条目按原文匹配
}

// NewIPFilter 创建 IP 过滤器
func NewIPFilter(blocked ...string) *IPFilter {
	f := &IPFilter{
		addrs: make(map[netip.Addr]struct{}),
		raw:   make(map[string]struct{}),
	}
	for _, entry := range blocked {
		entry = strings.TrimSpace(entry)
		if p, err := netip.ParsePrefix(entry); err == nil {
			f.prefixes = append(f.prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(entry); err == nil {
			f.addrs[a.Unmap()] = struct{}{}
			continue
		}
		if entry != "" {
			f.raw[entry] = struct{}{}
		}
	}
	return f
}

// IsAllowed IP 是否不在黑名单中
func (f *IPFilter) IsAllowed(ip string) bool {
	if _, ok := f.raw[ip]; ok {
		return false
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return true
	}
	addr = addr.Unmap()
	if _, ok := f.addrs[addr]; ok {
		return false
	}
	for _, p := range f.prefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// --- 辅助函数 ---

// GetClientIP 获取客户端 IP，优先使用代理头
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
