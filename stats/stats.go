package stats

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// 统计计数器
// splitter按名字申请计数器：<prefix>splitter.invalid_request 这类带点号的名字是对外契约

// Counter 单调递增计数器
type Counter struct {
	value int64
	prom  prometheus.Counter // 可选的prometheus镜像
}

func (c *Counter) Inc() {
	atomic.AddInt64(&c.value, 1)
	if c.prom != nil {
		c.prom.Inc()
	}
}

func (c *Counter) Value() int64 {
	return atomic.LoadInt64(&c.value)
}

// Scope 计数器的命名空间   同名多次申请返回同一个计数器
type Scope interface {
	Counter(name string) *Counter
}

// ----------------纯内存实现----------------
type simpleScope struct {
	mu       sync.Mutex
	counters map[string]*Counter
}

func MakeScope() Scope {
	return &simpleScope{
		counters: make(map[string]*Counter),
	}
}

func (s *simpleScope) Counter(name string) *Counter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.counters[name]; ok {
		return c
	}
	c := &Counter{}
	s.counters[name] = c
	return c
}

// ----------------prometheus实现----------------
// 点号在prometheus的指标名中不合法，注册时统一换成下划线
type promScope struct {
	mu       sync.Mutex
	registry *prometheus.Registry
	counters map[string]*Counter
}

func MakePromScope(registry *prometheus.Registry) Scope {
	return &promScope{
		registry: registry,
		counters: make(map[string]*Counter),
	}
}

func (s *promScope) Counter(name string) *Counter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.counters[name]; ok {
		return c
	}
	promCounter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: sanitizeName(name),
		Help: name,
	})
	s.registry.MustRegister(promCounter)
	c := &Counter{prom: promCounter}
	s.counters[name] = c
	return c
}

func sanitizeName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}
