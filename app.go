package main

import "github.com/masmgr/loggraph/cmd"

func main() {
	cmd.Run()
}
