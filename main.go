package main

import "go_redis_proxy/cmd"

func main() {
	cmd.Execute()
}
