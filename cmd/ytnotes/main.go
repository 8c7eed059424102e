package main

import "github.com/forPelevin/ytnotes/internal/cli"

func main() {
	cli.Main()
}
