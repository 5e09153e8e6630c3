package main

import "github.com/CraigKelly/betaflip/cmd"

func main() {
	cmd.Execute()
}
