package consistenthash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickNodeEmpty(t *testing.T) {
	m := NewNodeMap(0, nil)
	assert.True(t, m.IsEmpty())
	assert.Equal(t, "", m.PickNode("any"))
}

func TestPickNodeStable(t *testing.T) {
	m := NewNodeMap(0, nil)
	m.AddNode("127.0.0.1:6379", "127.0.0.1:6380", "127.0.0.1:6381")

	keys := []string{"a", "b", "foo", "bar", "user:1001"}
	for _, key := range keys {
		first := m.PickNode(key)
		assert.NotEmpty(t, first)
		// 同一个key每次都落在同一个节点
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, m.PickNode(key))
		}
	}
}

func TestPickNodeCoversAllNodes(t *testing.T) {
	m := NewNodeMap(0, nil)
	nodes := []string{"n1", "n2", "n3"}
	m.AddNode(nodes...)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		node := m.PickNode("key" + string(rune('a'+i%26)) + string(rune('0'+i%10)))
		seen[node] = true
	}
	// 有虚拟节点后key应当散到所有物理节点
	for _, n := range nodes {
		assert.True(t, seen[n], "node %s never picked", n)
	}
}

func TestAddNodeIgnoresEmpty(t *testing.T) {
	m := NewNodeMap(0, nil)
	m.AddNode("", "n1")
	assert.False(t, m.IsEmpty())
	assert.Equal(t, "n1", m.PickNode("whatever"))
}
