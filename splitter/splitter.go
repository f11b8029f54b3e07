package splitter

import (
	"go_redis_proxy/interface/pool"
	"go_redis_proxy/interface/resp"
	"go_redis_proxy/lib/logger"
	"go_redis_proxy/lib/utils"
	"go_redis_proxy/resp/reply"
	"go_redis_proxy/stats"
)

// 命令拆分器
// 前端把解析好的命令交进来，这里完成分类、路由和分片折叠，最终恰好回调一次

// Callbacks 客户端侧的回调   每个请求至多触发一次OnResponse
type Callbacks interface {
	OnResponse(reply resp.Reply)
}

// Request 一次在途的客户端请求   调用方持有，可取消
type Request interface {
	Cancel()
}

// 策略工厂   返回nil表示请求已同步完成（回调已触发）
type factoryFunc func(p pool.Pool, cmdLine [][]byte, cb Callbacks) Request

type handlerEntry struct {
	total   *stats.Counter
	factory factoryFunc
}

type Splitter struct {
	pool               pool.Pool
	cmdMap             map[string]*handlerEntry
	invalidRequest     *stats.Counter
	unsupportedCommand *stats.Counter
}

// MakeSplitter 注册全部受支持的命令并建好各自的计数器
// 命令名统一小写入表，重复注册属于编码错误，直接panic
func MakeSplitter(p pool.Pool, scope stats.Scope, statPrefix string) *Splitter {
	s := &Splitter{
		pool:               p,
		cmdMap:             make(map[string]*handlerEntry),
		invalidRequest:     scope.Counter(statPrefix + "splitter.invalid_request"),
		unsupportedCommand: scope.Counter(statPrefix + "splitter.unsupported_command"),
	}
	for _, name := range simpleCommands {
		s.addHandler(scope, statPrefix, name, makeSimpleRequest)
	}
	for _, name := range evalCommands {
		s.addHandler(scope, statPrefix, name, makeEvalRequest)
	}
	s.addHandler(scope, statPrefix, mgetCommand, makeMGetRequest)
	s.addHandler(scope, statPrefix, msetCommand, makeMSetRequest)
	return s
}

func (s *Splitter) addHandler(scope stats.Scope, statPrefix string, name string, factory factoryFunc) {
	lower := string(utils.ToLowerASCII([]byte(name)))
	if _, dup := s.cmdMap[lower]; dup {
		panic("duplicate command registration: " + lower)
	}
	s.cmdMap[lower] = &handlerEntry{
		total:   scope.Counter(statPrefix + "splitter.command." + lower + ".total"),
		factory: factory,
	}
}

// MakeRequest 拆分一条客户端命令
// 返回nil表示请求已经结束（非法、未知或者同步完成），回调都已触发
func (s *Splitter) MakeRequest(request resp.Reply, cb Callbacks) Request {
	cmdLine, ok := commandLine(request)
	if !ok || len(cmdLine) < 2 {
		s.onInvalidRequest(cb)
		return nil
	}

	name := string(utils.ToLowerASCII(cmdLine[0]))
	entry, ok := s.cmdMap[name]
	if !ok {
		s.unsupportedCommand.Inc()
		cb.OnResponse(MakeError("unsupported command '" + string(cmdLine[0]) + "'"))
		return nil
	}

	logger.Debug("splitting command " + name)
	entry.total.Inc()
	return entry.factory(s.pool, cmdLine, cb)
}

func (s *Splitter) onInvalidRequest(cb Callbacks) {
	s.invalidRequest.Inc()
	cb.OnResponse(MakeError("invalid request"))
}

// commandLine 校验命令的形状：必须是数组且每个元素都是bulk string
func commandLine(request resp.Reply) ([][]byte, bool) {
	switch v := request.(type) {
	case *reply.MultiBulkReply:
		for _, arg := range v.Args {
			if arg == nil { // null元素不是bulk string
				return nil, false
			}
		}
		return v.Args, true
	case *reply.MultiRawReply:
		args := make([][]byte, len(v.Replies))
		for i, elem := range v.Replies {
			bulk, ok := elem.(*reply.BulkReply)
			if !ok || bulk.Arg == nil {
				return nil, false
			}
			args[i] = bulk.Arg
		}
		return args, true
	}
	return nil, false
}

// MakeError 构造一条错误回复
func MakeError(text string) resp.Reply {
	return reply.MakeErrReply(text)
}

// 参数个数不对   错误信息里保留命令名原始大小写
func onWrongNumberOfArguments(cb Callbacks, cmdLine [][]byte) {
	cb.OnResponse(MakeError("wrong number of arguments for '" + string(cmdLine[0]) + "' command"))
}
