package main

import "github.com/chapool/txengine/cmd"

func main() {
	cmd.Execute()
}
