package consistenthash

import (
	"hash/crc32"
	"sort"
	"strconv"
)

// 一致性hash   key和节点都落在同一个hash环上
// 每个物理节点挂若干虚拟节点，避免节点少时数据倾斜

type HashFunc func(data []byte) uint32

const defaultReplicas = 16

type NodeMap struct {
	hashFunc    HashFunc
	replicas    int            // 每个节点的虚拟节点数
	nodeHashs   []int          // 环上所有虚拟节点的hash值，有序
	nodehashMap map[int]string // hash值 -> 物理节点地址
}

func NewNodeMap(replicas int, fn HashFunc) *NodeMap {
	m := &NodeMap{
		hashFunc:    fn,
		replicas:    replicas,
		nodehashMap: make(map[int]string),
	}
	if m.hashFunc == nil {
		m.hashFunc = crc32.ChecksumIEEE
	}
	if m.replicas <= 0 {
		m.replicas = defaultReplicas
	}
	return m
}

func (m *NodeMap) IsEmpty() bool {
	return len(m.nodeHashs) == 0
}

// AddNode 将节点加入hash环
func (m *NodeMap) AddNode(keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		for i := 0; i < m.replicas; i++ {
			hash := int(m.hashFunc([]byte(strconv.Itoa(i) + key)))
			m.nodeHashs = append(m.nodeHashs, hash)
			m.nodehashMap[hash] = key
		}
	}
	sort.Ints(m.nodeHashs)
}

// PickNode 返回key所属的节点   顺时针找到第一个虚拟节点，走到头则回到环首
func (m *NodeMap) PickNode(key string) string {
	if m.IsEmpty() {
		return ""
	}
	hash := int(m.hashFunc([]byte(key)))
	idx := sort.Search(len(m.nodeHashs), func(i int) bool {
		return m.nodeHashs[i] >= hash
	})
	if idx == len(m.nodeHashs) {
		idx = 0
	}
	return m.nodehashMap[m.nodeHashs[idx]]
}
