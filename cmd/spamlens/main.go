package main

import "spamlens/internal/cli"

func main() {
	cli.Execute()
}
