package main

import "github.com/platinummonkey/capsync/pkg/cli"

func main() {
	cli.Execute()
}
