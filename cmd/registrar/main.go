package main

import "github.com/mcoot/registrar/internal/cli"

func main() {
	cli.Execute()
}
