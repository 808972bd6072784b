package main

import "github.com/cppla/blog/cmd"

func main() {
	cmd.Execute()
}
