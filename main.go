package main

import "github.com/agentic-research/ocaast/cmd"

func main() {
	cmd.Execute()
}
