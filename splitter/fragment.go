package splitter

import (
	"go_redis_proxy/interface/pool"
	"go_redis_proxy/interface/resp"
	"sync"
)

// 分片请求的公共部分
// mget/mset把命令按节点拆成若干分片，所有分片都落定后恰好回调一次

// childSink 分片回复向父请求的折叠入口
type childSink interface {
	onChildResponse(value resp.Reply, index int, responseIndices []int)
}

// pendingRequest 一个在途的分片
// index是分片在父请求里的序号，responseIndices是该分片负责填充的最终槽位
type pendingRequest struct {
	parent          childSink
	index           int
	responseIndices []int
	handle          pool.Handle
	done            bool
}

// 实现pool.ResponseSink
func (p *pendingRequest) OnResponse(v resp.Reply) {
	p.parent.onChildResponse(v, p.index, p.responseIndices)
}

func (p *pendingRequest) OnFailure() {
	p.parent.onChildResponse(MakeError("upstream failure"), p.index, p.responseIndices)
}

type fragmentedRequest struct {
	mu         sync.Mutex
	cb         Callbacks
	pendings   []pendingRequest // 构造时一次定长分配，此后不再搬动
	numPending int
	errorCount int
	cancelled  bool
	completed  bool
}

// finish 一个分片的收口
// fold在锁内修改聚合状态，build在最后一个分片落定时生成最终回复
// 回调也在锁内触发：Cancel拿同一把锁，返回之后回调绝不会再发生
func (r *fragmentedRequest) finish(index int, fold func(), build func() resp.Reply) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr := &r.pendings[index]
	if r.cancelled || pr.done {
		return
	}
	pr.done = true
	pr.handle = nil
	fold()
	r.numPending--
	if r.numPending == 0 {
		r.completed = true
		r.cb.OnResponse(build())
	}
}

// Cancel 取消所有还在途的分片   此后客户端回调不再触发
func (r *fragmentedRequest) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
	for i := range r.pendings {
		pr := &r.pendings[i]
		if pr.handle != nil {
			pr.handle.Cancel()
			pr.handle = nil
		}
	}
}

// 构造尾声：分片可能已经全部同步落定
func (r *fragmentedRequest) isCompleted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// 提交后补挂handle   回复要是先到了就不再保存
func (r *fragmentedRequest) attachHandle(index int, h pool.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pr := &r.pendings[index]
	if !pr.done && !r.cancelled {
		pr.handle = h
	}
}
