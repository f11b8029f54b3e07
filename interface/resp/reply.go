package resp

// Reply resp协议的回复格式   所有的回复类型都要实现该接口
type Reply interface {
	ToBytes() []byte
}
