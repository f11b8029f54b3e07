package cluster

import (
	"go_redis_proxy/interface/resp"
	"go_redis_proxy/lib/utils"
	"testing"

	"github.com/stretchr/testify/assert"
)

type nopSink struct {
	responses []resp.Reply
	failures  int
}

func (s *nopSink) OnResponse(r resp.Reply) {
	s.responses = append(s.responses, r)
}

func (s *nopSink) OnFailure() {
	s.failures++
}

func TestPickNodeNoPeers(t *testing.T) {
	np := MakeNodePool(nil)
	defer np.Close()

	_, ok := np.PickNode("foo")
	assert.False(t, ok)
}

func TestSubmitNoPeers(t *testing.T) {
	np := MakeNodePool(nil)
	defer np.Close()

	sink := &nopSink{}
	h := np.Submit("foo", utils.ToCmdLine("GET", "foo"), sink)
	// 没有可路由的上游时同步返回nil，回调不触发
	assert.Nil(t, h)
	assert.Empty(t, sink.responses)
	assert.Zero(t, sink.failures)
}

func TestPickNodeStable(t *testing.T) {
	np := MakeNodePool([]string{"127.0.0.1:6381", "127.0.0.1:6382"})
	defer np.Close()

	first, ok := np.PickNode("foo")
	assert.True(t, ok)
	for i := 0; i < 10; i++ {
		node, ok := np.PickNode("foo")
		assert.True(t, ok)
		assert.Equal(t, first, node)
	}
}

func TestHandleCancelIdempotent(t *testing.T) {
	h := &requestHandle{}
	h.Cancel()
	h.Cancel()
	assert.True(t, h.cancelled.Get())
}
