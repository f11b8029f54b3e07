package splitter

import (
	"go_redis_proxy/interface/pool"
	"go_redis_proxy/interface/resp"
	"sync"
)

// 单节点策略   simple和eval只差路由key的位置

type singleServerRequest struct {
	mu        sync.Mutex
	cb        Callbacks
	handle    pool.Handle
	done      bool
	cancelled bool
}

// 实现pool.ResponseSink
func (r *singleServerRequest) OnResponse(v resp.Reply) {
	r.respond(v)
}

func (r *singleServerRequest) OnFailure() {
	r.respond(MakeError("upstream failure"))
}

func (r *singleServerRequest) respond(v resp.Reply) {
	// 回调在锁内触发：Cancel拿同一把锁，返回之后回调绝不会再发生
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done || r.cancelled {
		return
	}
	r.done = true
	r.handle = nil
	r.cb.OnResponse(v)
}

func (r *singleServerRequest) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
	if r.handle != nil {
		r.handle.Cancel()
		r.handle = nil
	}
}

func submitSingle(p pool.Pool, key string, cmdLine [][]byte, cb Callbacks) Request {
	r := &singleServerRequest{cb: cb}
	h := p.Submit(key, cmdLine, r)
	if h == nil {
		cb.OnResponse(MakeError("no upstream host"))
		return nil
	}
	r.mu.Lock()
	if !r.done && !r.cancelled { // 回复可能赶在这之前就到了
		r.handle = h
	}
	r.mu.Unlock()
	return r
}

// GET K   SET K V   第二个元素就是路由key
func makeSimpleRequest(p pool.Pool, cmdLine [][]byte, cb Callbacks) Request {
	return submitSingle(p, string(cmdLine[1]), cmdLine, cb)
}

// EVAL script numkeys key [key ...] arg [arg ...]
// 至少要有一个key才能路由，所以长度不足4直接报参数错误
func makeEvalRequest(p pool.Pool, cmdLine [][]byte, cb Callbacks) Request {
	if len(cmdLine) < 4 {
		onWrongNumberOfArguments(cb, cmdLine)
		return nil
	}
	return submitSingle(p, string(cmdLine[3]), cmdLine, cb)
}
