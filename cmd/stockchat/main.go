package main

import "stockchat-api/internal/cli"

func main() {
	cli.Execute()
}
