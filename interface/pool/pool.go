package pool

import "go_redis_proxy/interface/resp"

// 上游连接池的抽象   splitter只通过该接口和后端redis节点打交道

// ResponseSink 单次上游请求的回调   没有取消的情况下二者恰好触发其一
type ResponseSink interface {
	OnResponse(reply resp.Reply)
	OnFailure()
}

// Handle 一次在途的上游请求   Cancel之后sink不再触发
type Handle interface {
	Cancel()
}

// Pool key经过hash路由到固定的节点
type Pool interface {
	// PickNode 返回key所属的节点地址   没有可用节点时ok为false
	PickNode(key string) (node string, ok bool)
	// Submit 将一条命令发往key所在的节点   返回nil表示当前没有可用的上游
	Submit(key string, cmdLine [][]byte, sink ResponseSink) Handle
	Close()
}
