package main

import "github.com/bradford-hamilton/c8/cmd"

func main() {
	cmd.Execute()
}
