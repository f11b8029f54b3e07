package handler

import (
	"context"
	"go_redis_proxy/cluster"
	"go_redis_proxy/config"
	"go_redis_proxy/interface/resp"
	"go_redis_proxy/lib/logger"
	"go_redis_proxy/lib/sync/atomic"
	"go_redis_proxy/resp/connection"
	"go_redis_proxy/resp/parser"
	"go_redis_proxy/resp/reply"
	"go_redis_proxy/splitter"
	"go_redis_proxy/stats"
	"io"
	"net"
	"strings"
	"sync"
)

// 前端处理器   解析客户端命令后交给splitter，按提交顺序写回回复

type RespHandler struct {
	activeConn sync.Map
	splitter   *splitter.Splitter
	pool       *cluster.NodePool
	closing    atomic.Boolean // 标记服务是否正在关闭，拒绝后续连接
	closeChan  chan struct{}  // 关闭时唤醒所有还在等回复的连接
	closeOnce  sync.Once
}

func MakeHandler(scope stats.Scope) *RespHandler {
	pool := cluster.MakeNodePool(config.Properties.Peers)
	return &RespHandler{
		pool:      pool,
		splitter:  splitter.MakeSplitter(pool, scope, config.Properties.StatPrefix),
		closeChan: make(chan struct{}),
	}
}

func (r *RespHandler) closeClient(client *connection.Connection) {
	_ = client.Close()
	r.activeConn.Delete(client)
}

// replySink 单条命令的回调   结果通过chan交回连接的处理协程
type replySink struct {
	ch chan resp.Reply
}

func (s *replySink) OnResponse(reply resp.Reply) {
	select {
	case s.ch <- reply:
	default: // 已经收过一次回复
	}
}

// 实现tcp.Handler接口
func (r *RespHandler) Handle(ctx context.Context, conn net.Conn) {
	if r.closing.Get() {
		conn.Close()
		return
	}
	client := connection.NewConn(conn)
	r.activeConn.Store(client, struct{}{})
	ch := parser.ParseStream(conn)
	for payload := range ch {
		if payload.Err != nil {
			// 客户端断开则关闭该连接
			if payload.Err == io.EOF || payload.Err == io.ErrUnexpectedEOF ||
				strings.Contains(payload.Err.Error(), "use of closed network connection") {
				r.closeClient(client)
				logger.Info("connection closed: " + client.RemoteAddrStr())
				return
			}
			// 协议错误，回报后继续读
			errReply := reply.MakeErrReply(payload.Err.Error())
			err := client.Write(errReply.ToBytes())
			if err != nil {
				r.closeClient(client)
				logger.Info("connection closed: " + client.RemoteAddrStr())
				return
			}
			continue
		}
		if payload.Data == nil {
			continue
		}

		// 同一连接内的命令逐条等待，保证回复顺序和提交顺序一致
		sink := &replySink{ch: make(chan resp.Reply, 1)}
		req := r.splitter.MakeRequest(payload.Data, sink)
		var result resp.Reply
		select {
		case result = <-sink.ch:
		case <-r.closeChan:
			// 服务关闭，在途请求不再等待，直接取消
			if req != nil {
				req.Cancel()
			}
			r.closeClient(client)
			return
		}
		if result != nil {
			_ = client.Write(result.ToBytes())
		} else {
			_ = client.Write(unknownErrBytes)
		}
	}
}

var unknownErrBytes = []byte("-Err unknown\r\n")

// Close 关闭整个代理
func (r *RespHandler) Close() error {
	r.closeOnce.Do(func() {
		logger.Info("handler shutting down")
		r.closing.Set(true)
		close(r.closeChan)
		r.activeConn.Range(
			func(key, value any) bool {
				client := key.(*connection.Connection)
				_ = client.Close()
				return true
			})
		r.pool.Close()
	})
	return nil
}
