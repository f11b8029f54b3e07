package handler

import (
	"bufio"
	"context"
	"go_redis_proxy/stats"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 没配任何上游节点时，代理应当在线上回报no upstream host而不是断开

func TestHandlerNoUpstream(t *testing.T) {
	h := MakeHandler(stats.MakeScope())
	defer h.Close()

	server, client := net.Pipe()
	go h.Handle(context.Background(), server)
	defer client.Close()

	reader := bufio.NewReader(client)

	_, err := client.Write([]byte("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"))
	require.NoError(t, err)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "-no upstream host\r\n", line)

	// 只有一个元素的数组不构成合法命令
	_, err = client.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "-invalid request\r\n", line)

	// 只有一个元素时先按长度判为非法，即便命令名未注册
	_, err = client.Write([]byte("*1\r\n$8\r\nFLUSHALL\r\n"))
	require.NoError(t, err)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "-invalid request\r\n", line)

	// 未注册的命令，错误里保留原始大小写
	_, err = client.Write([]byte("*2\r\n$8\r\nFLUSHALL\r\n$5\r\nASYNC\r\n"))
	require.NoError(t, err)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "-unsupported command 'FLUSHALL'\r\n", line)
}
