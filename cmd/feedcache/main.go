package main

import "github.com/lepinkainen/feedcache/internal/cli"

var execute = cli.Execute

func main() {
	execute()
}
