package utils

// ToCmdLine 将字符串参数转化为命令行格式 [][]byte
func ToCmdLine(cmd ...string) [][]byte {
	args := make([][]byte, len(cmd))
	for i, s := range cmd {
		args[i] = []byte(s)
	}
	return args
}

// ToLowerASCII 只对ASCII大写字母做小写化   其他字节原样保留
// redis的命令名匹配只认ASCII 不能使用依赖locale的strings.ToLower
func ToLowerASCII(src []byte) []byte {
	dst := make([]byte, len(src))
	for i, b := range src {
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		dst[i] = b
	}
	return dst
}
