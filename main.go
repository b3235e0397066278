package main

import "github.com/cardpipe/cardpipe/cmd"

func main() {
	cmd.Execute()
}
