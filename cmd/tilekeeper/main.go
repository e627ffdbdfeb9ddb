package main

import "github.com/mcoot/tilekeeper/internal/cli"

func main() {
	cli.Execute()
}
