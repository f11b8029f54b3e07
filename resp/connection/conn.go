package connection

import (
	"go_redis_proxy/lib/sync/wait"
	"net"
	"sync"
	"time"
)

// Connection 对客户端tcp连接的包装
type Connection struct {
	conn         net.Conn
	waitingReply wait.Wait // 等待在途的回复全部写完再关闭
	mu           sync.Mutex
}

func NewConn(conn net.Conn) *Connection {
	return &Connection{
		conn: conn,
	}
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Connection) RemoteAddrStr() string {
	return c.conn.RemoteAddr().String()
}

func (c *Connection) Close() error {
	c.waitingReply.WaitWithTimeout(10 * time.Second)
	c.conn.Close()
	return nil
}

// Write 给客户端写回数据   加锁防止多条回复交错
func (c *Connection) Write(bytes []byte) error {
	if len(bytes) == 0 {
		return nil
	}

	c.mu.Lock()
	c.waitingReply.Add(1)
	defer func() {
		c.waitingReply.Done()
		c.mu.Unlock()
	}()

	_, err := c.conn.Write(bytes)
	return err
}
