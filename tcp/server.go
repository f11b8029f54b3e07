package tcp

import (
	"context"
	"go_redis_proxy/interface/tcp"
	"go_redis_proxy/lib/logger"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

type Config struct {
	Address string
}

// ListenAndServeWithSignal 监听端口并响应系统的退出信号
func ListenAndServeWithSignal(cfg *Config, handler tcp.Handler) error {
	closeChan := make(chan struct{})
	signChan := make(chan os.Signal, 1)
	signal.Notify(signChan, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signChan
		switch sig {
		case syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT:
			closeChan <- struct{}{}
		}
	}()

	l, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return err
	}
	logger.Info("proxy listening on " + cfg.Address)
	ListenAndServe(l, handler, closeChan)
	return nil
}

func ListenAndServe(listener net.Listener, handler tcp.Handler, closeChan <-chan struct{}) {
	go func() { // 等退出信号
		<-closeChan
		logger.Info("shutting down")
		listener.Close()
		handler.Close()
	}()

	defer func() {
		listener.Close()
		handler.Close()
	}()

	ctx := context.Background()
	var waitDone sync.WaitGroup
	for {
		c, err := listener.Accept()
		if err != nil {
			break
		}
		logger.Info("accept link from " + c.RemoteAddr().String())
		waitDone.Add(1)
		go func() {
			defer waitDone.Done()
			handler.Handle(ctx, c)
		}()
	}
	waitDone.Wait() // 退出前等所有连接处理完
}
