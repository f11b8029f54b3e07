package client

import (
	"errors"
	"go_redis_proxy/interface/resp"
	"go_redis_proxy/lib/sync/wait"
	"go_redis_proxy/lib/utils"
	"go_redis_proxy/resp/parser"
	"go_redis_proxy/resp/reply"
	"net"
	"sync"
	"time"
)

// 上游节点的pipeline客户端
// 一条tcp连接上并发收发：写协程按序发送，读协程按序配对回复

const (
	chanSize = 256
	maxWait  = 3 * time.Second
)

type Client struct {
	conn        net.Conn
	pendingReqs chan *request // 等待发送
	waitingReqs chan *request // 已发送，等待回复
	ticker      *time.Ticker
	addr        string

	working *sync.WaitGroup // 未完成的请求数，关闭前要等它们结束
	closed  chan struct{}
}

type request struct {
	args      [][]byte
	reply     resp.Reply
	heartbeat bool
	waiting   *wait.Wait
	err       error
}

var ErrClosed = errors.New("client closed")

func MakeClient(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		addr:        addr,
		conn:        conn,
		pendingReqs: make(chan *request, chanSize),
		waitingReqs: make(chan *request, chanSize),
		working:     &sync.WaitGroup{},
		closed:      make(chan struct{}),
	}, nil
}

// Start 启动收发协程和心跳
func (c *Client) Start() {
	c.ticker = time.NewTicker(10 * time.Second)
	go c.handleWrite()
	go c.handleRead()
	go c.heartbeat()
}

// Close 先停新请求，等在途请求结束后断开连接
func (c *Client) Close() {
	c.ticker.Stop()
	close(c.closed)
	c.working.Wait()
	_ = c.conn.Close()
}

// Send 发送一条命令并等待回复
func (c *Client) Send(args [][]byte) (resp.Reply, error) {
	select {
	case <-c.closed:
		return nil, ErrClosed
	default:
	}
	req := &request{
		args:    args,
		waiting: &wait.Wait{},
	}
	req.waiting.Add(1)
	c.working.Add(1)
	defer c.working.Done()

	select {
	case c.pendingReqs <- req:
	case <-c.closed:
		return nil, ErrClosed
	}

	timeout := req.waiting.WaitWithTimeout(maxWait)
	if timeout {
		return nil, errors.New("server time out")
	}
	if req.err != nil {
		return nil, req.err
	}
	return req.reply, nil
}

func (c *Client) heartbeat() {
	for {
		select {
		case <-c.ticker.C:
			c.doHeartbeat()
		case <-c.closed:
			return
		}
	}
}

func (c *Client) doHeartbeat() {
	req := &request{
		args:      utils.ToCmdLine("PING"),
		heartbeat: true,
		waiting:   &wait.Wait{},
	}
	req.waiting.Add(1)
	c.working.Add(1)
	defer c.working.Done()
	select {
	case c.pendingReqs <- req:
	case <-c.closed:
		return
	}
	req.waiting.WaitWithTimeout(maxWait)
}

func (c *Client) handleWrite() {
	for {
		select {
		case req := <-c.pendingReqs:
			c.doRequest(req)
		case <-c.closed:
			return
		}
	}
}

func (c *Client) doRequest(req *request) {
	if req == nil || len(req.args) == 0 {
		return
	}
	bytes := reply.MakeMultiBulkReply(req.args).ToBytes()
	_, err := c.conn.Write(bytes)
	i := 0
	for err != nil && i < 3 { // 简单重写几次
		_, err = c.conn.Write(bytes)
		i++
	}
	if err == nil {
		c.waitingReqs <- req
	} else {
		req.err = err
		req.waiting.Done()
	}
}

func (c *Client) handleRead() {
	ch := parser.ParseStream(c.conn)
	for payload := range ch {
		if payload.Err != nil {
			c.finishRequest(nil, payload.Err)
			continue
		}
		c.finishRequest(payload.Data, nil)
	}
	// 连接断开，挂起中的请求全部置错
	c.drainWaiting()
}

// 按发送顺序配对回复
func (c *Client) finishRequest(r resp.Reply, err error) {
	var req *request
	select {
	case req = <-c.waitingReqs:
	case <-c.closed:
		return
	}
	req.reply = r
	req.err = err
	req.waiting.Done()
}

func (c *Client) drainWaiting() {
	for {
		select {
		case req := <-c.waitingReqs:
			req.err = errors.New("connection lost")
			req.waiting.Done()
		default:
			return
		}
	}
}
