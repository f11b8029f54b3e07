package splitter

import (
	"go_redis_proxy/interface/pool"
	"go_redis_proxy/interface/resp"
	"go_redis_proxy/resp/reply"
)

// MGET的分片读策略
// 按节点把key聚成子MGET，回复按key的原始位置写回最终数组

type mgetRequest struct {
	fragmentedRequest
	responses []resp.Reply // 按客户端原始key顺序的槽位
}

func makeMGetRequest(p pool.Pool, cmdLine [][]byte, cb Callbacks) Request {
	// MGET k1 k2 ...   按节点分组，记录每个key的原始下标
	type keyIndex struct {
		key   []byte
		index int
	}
	groups := make(map[string][]keyIndex)
	order := make([]string, 0)
	for i := 1; i < len(cmdLine); i++ {
		node, _ := p.PickNode(string(cmdLine[i]))
		if _, ok := groups[node]; !ok {
			order = append(order, node)
		}
		groups[node] = append(groups[node], keyIndex{key: cmdLine[i], index: i - 1})
	}

	r := &mgetRequest{}
	r.cb = cb
	r.numPending = len(groups)
	r.pendings = make([]pendingRequest, len(groups))
	r.responses = make([]resp.Reply, len(cmdLine)-1)

	for fragIndex, node := range order {
		keys := groups[node]
		sub := make([][]byte, len(keys)+1)
		sub[0] = []byte("MGET")
		indices := make([]int, 0, len(keys))
		for i, ki := range keys {
			sub[i+1] = ki.key
			indices = append(indices, ki.index)
		}

		pr := &r.pendings[fragIndex]
		pr.parent = r
		pr.index = fragIndex
		pr.responseIndices = indices

		// 分片以它的第一个key路由
		h := p.Submit(string(sub[1]), sub, pr)
		if h == nil {
			pr.OnResponse(MakeError("no upstream host"))
			continue
		}
		r.attachHandle(fragIndex, h)
	}

	if r.isCompleted() { // 所有分片同步落定，回调已触发
		return nil
	}
	return r
}

func (r *mgetRequest) onChildResponse(value resp.Reply, index int, responseIndices []int) {
	r.finish(index, func() {
		switch v := value.(type) {
		case *reply.MultiBulkReply:
			r.foldArray(responseIndices, len(v.Args), func(i int) (resp.Reply, bool) {
				if v.Args[i] == nil {
					return reply.MakeNullBulkReply(), false
				}
				return reply.MakeBulkReply(v.Args[i]), false
			})
		case *reply.MultiRawReply:
			r.foldArray(responseIndices, len(v.Replies), func(i int) (resp.Reply, bool) {
				switch v.Replies[i].(type) {
				case *reply.BulkReply, *reply.NullBulkReply:
					return v.Replies[i], false
				}
				// 数组里只允许出现bulk或null
				return MakeError("upstream protocol error"), true
			})
		case *reply.EmptyMultiBulkReply:
			r.foldArray(responseIndices, 0, nil)
		case *reply.BulkReply:
			// 整个分片失败时，该分片覆盖的每个key都要看到这条回复
			for _, ri := range responseIndices {
				r.responses[ri] = value
				r.errorCount++
			}
		case reply.ErrorReply:
			for _, ri := range responseIndices {
				r.responses[ri] = value
				r.errorCount++
			}
		default:
			// Integer、SimpleString、Null：MGET的上游只应回数组
			for _, ri := range responseIndices {
				r.responses[ri] = MakeError("upstream protocol error")
				r.errorCount++
			}
		}
	}, func() resp.Reply {
		return reply.MakeMultiRawReply(r.responses)
	})
}

// foldArray 把一个数组分片按槽位写回
// 上游声明的长度和分片key数不一致时尽量填充，缺口按协议违例补齐
func (r *mgetRequest) foldArray(responseIndices []int, n int, elem func(i int) (resp.Reply, bool)) {
	count := len(responseIndices)
	if n < count {
		count = n
	}
	for i := 0; i < count; i++ {
		v, isErr := elem(i)
		r.responses[responseIndices[i]] = v
		if isErr {
			r.errorCount++
		}
	}
	for i := count; i < len(responseIndices); i++ {
		r.responses[responseIndices[i]] = MakeError("upstream protocol error")
		r.errorCount++
	}
}
