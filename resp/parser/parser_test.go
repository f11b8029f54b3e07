package parser

import (
	"bytes"
	"go_redis_proxy/resp/reply"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) []*Payload {
	t.Helper()
	ch := ParseStream(bytes.NewReader([]byte(input)))
	var payloads []*Payload
	for p := range ch {
		if p.Err == io.EOF || p.Err == io.ErrUnexpectedEOF {
			break
		}
		payloads = append(payloads, p)
	}
	return payloads
}

func TestParseCommand(t *testing.T) {
	payloads := readAll(t, "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n")
	require.Len(t, payloads, 1)
	require.NoError(t, payloads[0].Err)

	mb, ok := payloads[0].Data.(*reply.MultiBulkReply)
	require.True(t, ok)
	require.Len(t, mb.Args, 3)
	assert.Equal(t, "SET", string(mb.Args[0]))
	assert.Equal(t, "key", string(mb.Args[1]))
	assert.Equal(t, "value", string(mb.Args[2]))
}

func TestParseNullElementInsideArray(t *testing.T) {
	// MGET的回复里null和空串必须能区分
	payloads := readAll(t, "*3\r\n$1\r\nx\r\n$-1\r\n$0\r\n\r\n")
	require.Len(t, payloads, 1)
	require.NoError(t, payloads[0].Err)

	mb, ok := payloads[0].Data.(*reply.MultiBulkReply)
	require.True(t, ok)
	require.Len(t, mb.Args, 3)
	assert.Equal(t, []byte("x"), mb.Args[0])
	assert.Nil(t, mb.Args[1])
	assert.NotNil(t, mb.Args[2])
	assert.Empty(t, mb.Args[2])
}

func TestParseTopLevelBulk(t *testing.T) {
	payloads := readAll(t, "$4\r\nPONG\r\n")
	require.Len(t, payloads, 1)
	require.NoError(t, payloads[0].Err)

	b, ok := payloads[0].Data.(*reply.BulkReply)
	require.True(t, ok)
	assert.Equal(t, "PONG", string(b.Arg))
}

func TestParseTopLevelNullBulk(t *testing.T) {
	payloads := readAll(t, "$-1\r\n")
	require.Len(t, payloads, 1)
	require.NoError(t, payloads[0].Err)
	_, ok := payloads[0].Data.(*reply.NullBulkReply)
	assert.True(t, ok)
}

func TestParseBulkBodyStartingWithDollar(t *testing.T) {
	// 字符串内容本身以$开头，不能被当成头解析
	payloads := readAll(t, "*1\r\n$4\r\n$abc\r\n")
	require.Len(t, payloads, 1)
	require.NoError(t, payloads[0].Err)

	mb, ok := payloads[0].Data.(*reply.MultiBulkReply)
	require.True(t, ok)
	require.Len(t, mb.Args, 1)
	assert.Equal(t, "$abc", string(mb.Args[0]))
}

func TestParseSingleLineReplies(t *testing.T) {
	payloads := readAll(t, "+OK\r\n-ERR broken\r\n:42\r\n")
	require.Len(t, payloads, 3)

	status, ok := payloads[0].Data.(*reply.StatusReply)
	require.True(t, ok)
	assert.Equal(t, "OK", status.Status)

	errReply, ok := payloads[1].Data.(*reply.StandardErrReply)
	require.True(t, ok)
	assert.Equal(t, "ERR broken", errReply.Error())

	intReply, ok := payloads[2].Data.(*reply.IntReply)
	require.True(t, ok)
	assert.Equal(t, int64(42), intReply.Code)
}

func TestParseEmptyArray(t *testing.T) {
	payloads := readAll(t, "*0\r\n")
	require.Len(t, payloads, 1)
	_, ok := payloads[0].Data.(*reply.EmptyMultiBulkReply)
	assert.True(t, ok)
}

func TestParseProtocolError(t *testing.T) {
	payloads := readAll(t, "*abc\r\n+OK\r\n")
	require.Len(t, payloads, 2)
	assert.Error(t, payloads[0].Err)
	// 协议错误后解析器恢复，继续解析后面的数据
	require.NoError(t, payloads[1].Err)
	_, ok := payloads[1].Data.(*reply.StatusReply)
	assert.True(t, ok)
}

func TestParseMultipleCommands(t *testing.T) {
	payloads := readAll(t, "*2\r\n$3\r\nGET\r\n$1\r\na\r\n*2\r\n$3\r\nGET\r\n$1\r\nb\r\n")
	require.Len(t, payloads, 2)
	for _, p := range payloads {
		require.NoError(t, p.Err)
		_, ok := p.Data.(*reply.MultiBulkReply)
		assert.True(t, ok)
	}
}
