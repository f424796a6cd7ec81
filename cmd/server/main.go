package main

import "task-go/internal/cli"

func main() {
	cli.Execute()
}
