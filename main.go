package main

import "github.com/lepinkainen/podio/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
