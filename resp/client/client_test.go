package client

import (
	"go_redis_proxy/lib/utils"
	"go_redis_proxy/resp/parser"
	"go_redis_proxy/resp/reply"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 起一个回环的假redis：收到什么命令都按套路回
func startFakeServer(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				ch := parser.ParseStream(conn)
				for payload := range ch {
					if payload.Err != nil {
						return
					}
					mb, ok := payload.Data.(*reply.MultiBulkReply)
					if !ok {
						continue
					}
					switch string(mb.Args[0]) {
					case "PING":
						_, _ = conn.Write(reply.MakePongReply().ToBytes())
					case "GET":
						_, _ = conn.Write(reply.MakeBulkReply([]byte("bar")).ToBytes())
					default:
						_, _ = conn.Write(reply.MakeOkReply().ToBytes())
					}
				}
			}(conn)
		}
	}()
	return l
}

func TestClientSend(t *testing.T) {
	l := startFakeServer(t)
	defer l.Close()

	c, err := MakeClient(l.Addr().String())
	require.NoError(t, err)
	c.Start()
	defer c.Close()

	r, err := c.Send(utils.ToCmdLine("GET", "foo"))
	require.NoError(t, err)
	assert.Equal(t, "$3\r\nbar\r\n", string(r.ToBytes()))

	r, err = c.Send(utils.ToCmdLine("SET", "foo", "baz"))
	require.NoError(t, err)
	assert.Equal(t, "+OK\r\n", string(r.ToBytes()))
}

func TestClientPipelined(t *testing.T) {
	l := startFakeServer(t)
	defer l.Close()

	c, err := MakeClient(l.Addr().String())
	require.NoError(t, err)
	c.Start()
	defer c.Close()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			r, err := c.Send(utils.ToCmdLine("GET", "foo"))
			assert.NoError(t, err)
			assert.Equal(t, "$3\r\nbar\r\n", string(r.ToBytes()))
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestClientSendAfterClose(t *testing.T) {
	l := startFakeServer(t)
	defer l.Close()

	c, err := MakeClient(l.Addr().String())
	require.NoError(t, err)
	c.Start()
	c.Close()

	_, err = c.Send(utils.ToCmdLine("GET", "foo"))
	assert.ErrorIs(t, err, ErrClosed)
}
