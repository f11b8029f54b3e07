package splitter

import (
	"go_redis_proxy/interface/pool"
	"go_redis_proxy/interface/resp"
	"go_redis_proxy/resp/reply"
	"strconv"
)

// MSET的分片写策略
// 按节点把键值对聚成子MSET，全部+OK才算成功，否则统计失败的key数

type msetRequest struct {
	fragmentedRequest
}

func makeMSetRequest(p pool.Pool, cmdLine [][]byte, cb Callbacks) Request {
	// MSET k1 v1 k2 v2 ...   参数必须成对
	if (len(cmdLine)-1)%2 != 0 {
		onWrongNumberOfArguments(cb, cmdLine)
		return nil
	}

	type pairIndex struct {
		key   []byte
		value []byte
		index int
	}
	groups := make(map[string][]pairIndex)
	order := make([]string, 0)
	for i := 1; i < len(cmdLine); i += 2 {
		node, _ := p.PickNode(string(cmdLine[i]))
		if _, ok := groups[node]; !ok {
			order = append(order, node)
		}
		groups[node] = append(groups[node], pairIndex{
			key:   cmdLine[i],
			value: cmdLine[i+1],
			index: i - 1,
		})
	}

	r := &msetRequest{}
	r.cb = cb
	r.numPending = len(groups)
	r.pendings = make([]pendingRequest, len(groups))

	for fragIndex, node := range order {
		pairs := groups[node]
		sub := make([][]byte, 2*len(pairs)+1)
		sub[0] = []byte("MSET")
		indices := make([]int, 0, len(pairs))
		for i, pi := range pairs {
			sub[2*i+1] = pi.key
			sub[2*i+2] = pi.value
			indices = append(indices, pi.index)
		}

		pr := &r.pendings[fragIndex]
		pr.parent = r
		pr.index = fragIndex
		pr.responseIndices = indices

		h := p.Submit(string(sub[1]), sub, pr)
		if h == nil {
			pr.OnResponse(MakeError("no upstream host"))
			continue
		}
		r.attachHandle(fragIndex, h)
	}

	if r.isCompleted() {
		return nil
	}
	return r
}

func (r *msetRequest) onChildResponse(value resp.Reply, index int, responseIndices []int) {
	r.finish(index, func() {
		if !reply.IsOKReply(value) {
			// 分片失败，它覆盖的每个key都算一次错误
			r.errorCount += len(responseIndices)
		}
	}, func() resp.Reply {
		if r.errorCount == 0 {
			return reply.MakeOkReply()
		}
		return MakeError("finished with " + strconv.Itoa(r.errorCount) + " error(s)")
	})
}
