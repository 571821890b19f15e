package main

import "tunegrab/internal/cli"

func main() {
	cli.Main()
}
