package main

import "profilegen/internal/cli"

func main() {
	cli.Execute()
}
