package splitter

// 受支持的命令集合
// simpleCommands里都是第一个参数即为key的单key命令，按key直接转发
// eval系命令的key在第四个位置
// mget/mset需要按节点拆分，各自有专门的策略

var simpleCommands = []string{
	"append",
	"bitcount",
	"bitfield",
	"bitpos",
	"decr",
	"decrby",
	"dump",
	"expire",
	"expireat",
	"geoadd",
	"geodist",
	"geohash",
	"geopos",
	"get",
	"getbit",
	"getrange",
	"getset",
	"hdel",
	"hexists",
	"hget",
	"hgetall",
	"hincrby",
	"hincrbyfloat",
	"hkeys",
	"hlen",
	"hmget",
	"hmset",
	"hscan",
	"hset",
	"hsetnx",
	"hstrlen",
	"hvals",
	"incr",
	"incrby",
	"incrbyfloat",
	"lindex",
	"linsert",
	"llen",
	"lpop",
	"lpush",
	"lpushx",
	"lrange",
	"lrem",
	"lset",
	"ltrim",
	"persist",
	"pexpire",
	"pexpireat",
	"pfadd",
	"pfcount",
	"psetex",
	"pttl",
	"restore",
	"rpop",
	"rpush",
	"rpushx",
	"sadd",
	"scard",
	"set",
	"setbit",
	"setex",
	"setnx",
	"setrange",
	"sismember",
	"smembers",
	"spop",
	"srandmember",
	"srem",
	"sscan",
	"strlen",
	"ttl",
	"type",
	"zadd",
	"zcard",
	"zcount",
	"zincrby",
	"zlexcount",
	"zrange",
	"zrangebylex",
	"zrangebyscore",
	"zrank",
	"zrem",
	"zremrangebylex",
	"zremrangebyrank",
	"zremrangebyscore",
	"zrevrange",
	"zrevrangebylex",
	"zrevrangebyscore",
	"zrevrank",
	"zscan",
	"zscore",
}

var evalCommands = []string{
	"eval",
	"evalsha",
}

const (
	mgetCommand = "mget"
	msetCommand = "mset"
)
