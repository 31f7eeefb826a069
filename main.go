package main

import "github.com/deckpatch/deckpatch/cmd"

func main() {
	cmd.Execute()
}
