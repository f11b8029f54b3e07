package cluster

import (
	"context"
	"errors"
	"go_redis_proxy/interface/pool"
	"go_redis_proxy/interface/resp"
	"go_redis_proxy/lib/consistenthash"
	"go_redis_proxy/lib/logger"
	atomic2 "go_redis_proxy/lib/sync/atomic"
	"go_redis_proxy/resp/client"

	commonspool "github.com/jolestar/go-commons-pool/v2"
)

// NodePool 上游节点连接池   key经一致性hash定位节点，每个节点一个客户端对象池
type NodePool struct {
	nodes          []string
	peerPicker     *consistenthash.NodeMap
	peerConnection map[string]*commonspool.ObjectPool
}

func MakeNodePool(peers []string) *NodePool {
	np := &NodePool{
		peerPicker:     consistenthash.NewNodeMap(0, nil),
		peerConnection: make(map[string]*commonspool.ObjectPool),
	}

	nodes := make([]string, 0, len(peers))
	nodes = append(nodes, peers...)
	np.nodes = nodes
	np.peerPicker.AddNode(nodes...)

	ctx := context.Background()
	for _, peer := range peers {
		p := commonspool.NewObjectPoolWithDefaultConfig(ctx, &connectionFactory{
			Peer: peer,
		})
		np.peerConnection[peer] = p
	}

	return np
}

// PickNode 实现pool.Pool   返回key所属的节点
func (np *NodePool) PickNode(key string) (string, bool) {
	node := np.peerPicker.PickNode(key)
	return node, node != ""
}

// requestHandle 一次在途请求的取消凭据
type requestHandle struct {
	cancelled atomic2.Boolean
}

func (h *requestHandle) Cancel() {
	h.cancelled.Set(true)
}

// Submit 实现pool.Pool   借一个客户端异步发送，回复经sink交回
// 返回nil表示当前没有可路由的上游
func (np *NodePool) Submit(key string, cmdLine [][]byte, sink pool.ResponseSink) pool.Handle {
	peer, ok := np.PickNode(key)
	if !ok {
		return nil
	}
	p, ok := np.peerConnection[peer]
	if !ok {
		return nil
	}

	h := &requestHandle{}
	go func() {
		r, err := np.relay(p, cmdLine)
		if h.cancelled.Get() { // 已取消，结果丢弃
			return
		}
		if err != nil {
			logger.Error("relay to " + peer + " failed: " + err.Error())
			sink.OnFailure()
			return
		}
		sink.OnResponse(r)
	}()
	return h
}

func (np *NodePool) relay(p *commonspool.ObjectPool, cmdLine [][]byte) (resp.Reply, error) {
	ctx := context.Background()
	object, err := p.BorrowObject(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := object.(*client.Client)
	if !ok {
		_ = p.ReturnObject(ctx, object)
		return nil, errors.New("wrong type in connection pool")
	}
	defer func() {
		_ = p.ReturnObject(ctx, c)
	}()
	return c.Send(cmdLine)
}

func (np *NodePool) Close() {
	ctx := context.Background()
	for _, p := range np.peerConnection {
		p.Close(ctx)
	}
}
