package main

import "github.com/relaywire/relay/cmd"

func main() {
	cmd.Execute()
}
