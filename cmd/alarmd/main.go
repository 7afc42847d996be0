package main

import "github.com/oshokin/aevum/cmd/alarmd/cmd"

func main() {
	cmd.Execute()
}
