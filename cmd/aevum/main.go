package main

import "github.com/oshokin/aevum/cmd/aevum/cmd"

func main() {
	cmd.Execute()
}
