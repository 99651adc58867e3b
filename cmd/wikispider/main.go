package main

import (
	"context"
	"wikispider/cmd/wikispider/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
