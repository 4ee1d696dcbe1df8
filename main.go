package main

import "github.com/nramenta/deco/cmd"

func main() {
	cmd.Execute()
}
