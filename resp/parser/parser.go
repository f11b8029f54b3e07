package parser

// resp协议解析器   客户端命令和上游回复共用同一套解析

import (
	"bufio"
	"errors"
	"go_redis_proxy/interface/resp"
	"go_redis_proxy/lib/logger"
	"go_redis_proxy/resp/reply"
	"io"
	"runtime/debug"
	"strconv"
	"strings"
)

// Payload 解析出的一条完整数据
type Payload struct {
	Data resp.Reply
	Err  error
}

// 解析器的状态
type readState struct {
	readingMultiLine  bool     // 是否处于多行读取中
	expectedArgsCount int      // 期望读取到的参数个数
	msgType           byte     // 消息类型 '*' 或 '$'
	args              [][]byte // 已读取的参数   nil元素表示null bulk
	nullBulk          bool     // 顶层$-1
	inBulk            bool     // 已读到$n头，下一行是字符串内容
	bulkLen           int64    // 当前字符串的长度
}

func (s *readState) finished() bool {
	return s.expectedArgsCount > 0 && len(s.args) == s.expectedArgsCount
}

// ParseStream 异步解析   每个连接一个goroutine
func ParseStream(reader io.Reader) <-chan *Payload {
	ch := make(chan *Payload)
	go parse0(reader, ch)
	return ch
}

func parse0(reader io.Reader, ch chan<- *Payload) {
	defer func() { // 防止panic拖垮整个进程
		if err := recover(); err != nil {
			logger.Error(string(debug.Stack()))
		}
	}()

	bufReader := bufio.NewReader(reader)
	var state readState
	var err error
	var msg []byte
	for {
		var ioErr bool
		msg, ioErr, err = readLine(bufReader, &state)
		if err != nil {
			if ioErr { // io错误，终止该连接的解析
				ch <- &Payload{
					Err: err,
				}
				close(ch)
				return
			}
			// 协议错误，重置状态继续读
			ch <- &Payload{
				Err: err,
			}
			state = readState{}
			continue
		}

		if !state.readingMultiLine {
			if msg[0] == '*' { // *3\r\n
				err := parseMultiBulkHeader(msg, &state)
				if err != nil {
					ch <- &Payload{
						Err: err,
					}
					state = readState{}
					continue
				}
				if state.expectedArgsCount == 0 {
					ch <- &Payload{
						Data: reply.MakeEmptyMultiBulkReply(),
					}
					state = readState{}
					continue
				}
			} else if msg[0] == '$' { // $4\r\nPONG\r\n
				err := parseBulkHeader(msg, &state)
				if err != nil {
					ch <- &Payload{
						Err: err,
					}
					state = readState{}
					continue
				}
				if state.nullBulk { // $-1\r\n
					ch <- &Payload{
						Data: reply.MakeNullBulkReply(),
					}
					state = readState{}
					continue
				}
			} else { // + - : 单行
				result, err := parseSingleLineReply(msg)
				ch <- &Payload{
					Data: result,
					Err:  err,
				}
				state = readState{}
				continue
			}
		} else {
			err := readBody(msg, &state)
			if err != nil {
				ch <- &Payload{
					Err: err,
				}
				state = readState{}
				continue
			}
			if state.finished() {
				var result resp.Reply
				if state.msgType == '*' {
					result = reply.MakeMultiBulkReply(state.args)
				} else if state.msgType == '$' {
					result = reply.MakeBulkReply(state.args[0])
				}
				ch <- &Payload{
					Data: result,
					Err:  err,
				}
				state = readState{}
			}
		}
	}
}

// 读一行数据   返回 数据、是否io错误、具体错误
func readLine(bufReader *bufio.Reader, state *readState) ([]byte, bool, error) {
	var msg []byte
	var err error
	if state.bulkLen == 0 { // 按\r\n分割
		msg, err = bufReader.ReadBytes('\n')
		if err != nil {
			return nil, true, err
		}
		if len(msg) < 2 || msg[len(msg)-2] != '\r' {
			return nil, false, errors.New("protocol error: " + string(msg))
		}
	} else { // 已读到$n，按n个字节读取
		msg = make([]byte, state.bulkLen+2)
		_, err := io.ReadFull(bufReader, msg)
		if err != nil {
			return nil, true, err
		}
		if len(msg) == 0 || msg[len(msg)-1] != '\n' || msg[len(msg)-2] != '\r' {
			return nil, false, errors.New("protocol error: " + string(msg))
		}
		state.bulkLen = 0
	}
	return msg, false, nil
}

// *3\r\n$3\r\nSET\r\n...   解析数组头，设置解析状态
func parseMultiBulkHeader(msg []byte, state *readState) error {
	var err error
	var expectedLine uint64
	expectedLine, err = strconv.ParseUint(string(msg[1:len(msg)-2]), 10, 32)
	if err != nil {
		return errors.New("protocol error: " + string(msg))
	}
	if expectedLine == 0 {
		state.expectedArgsCount = 0
		return nil
	}
	state.msgType = msg[0]
	state.readingMultiLine = true
	state.expectedArgsCount = int(expectedLine)
	state.args = make([][]byte, 0, expectedLine)
	return nil
}

// $4\r\nPING\r\n   解析顶层bulk头
func parseBulkHeader(msg []byte, state *readState) error {
	var err error
	state.bulkLen, err = strconv.ParseInt(string(msg[1:len(msg)-2]), 10, 64)
	if err != nil {
		return errors.New("protocol error: " + string(msg))
	}
	if state.bulkLen == -1 {
		state.nullBulk = true
		state.bulkLen = 0
		return nil
	} else if state.bulkLen >= 0 {
		state.msgType = msg[0]
		state.readingMultiLine = true
		state.expectedArgsCount = 1
		state.args = make([][]byte, 0, 1)
		state.inBulk = true
		return nil
	}
	return errors.New("protocol error: " + string(msg))
}

// +OK\r\n  -err\r\n  :5\r\n
func parseSingleLineReply(msg []byte) (resp.Reply, error) {
	str := strings.TrimSuffix(string(msg), "\r\n")
	var result resp.Reply
	switch msg[0] {
	case '+':
		result = reply.MakeStatusReply(str[1:])
	case '-':
		result = reply.MakeErrReply(str[1:])
	case ':':
		val, err := strconv.ParseInt(str[1:], 10, 64)
		if err != nil {
			return nil, errors.New("protocol error: " + string(msg))
		}
		result = reply.MakeIntReply(val)
	default:
		return nil, errors.New("protocol error: " + string(msg))
	}
	return result, nil
}

// 读取数组的元素部分
// (*3\r\n)  $3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n
func readBody(msg []byte, state *readState) error {
	line := msg[0 : len(msg)-2]
	var err error
	if state.inBulk { // 字符串内容，可能以'$'开头，不能当作头解析
		body := make([]byte, len(line))
		copy(body, line)
		state.args = append(state.args, body)
		state.inBulk = false
	} else if len(line) > 0 && line[0] == '$' { // $n头
		state.bulkLen, err = strconv.ParseInt(string(line[1:]), 10, 64)
		if err != nil {
			return errors.New("protocol error: " + string(msg))
		}
		if state.bulkLen == -1 { // null元素要和空串区分开，MGET折叠依赖这一点
			state.args = append(state.args, nil)
			state.bulkLen = 0
		} else if state.bulkLen < -1 {
			return errors.New("protocol error: " + string(msg))
		} else {
			state.inBulk = true
		}
	} else {
		return errors.New("protocol error: " + string(msg))
	}
	return nil
}
