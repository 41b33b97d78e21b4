package main

import (
	"context"
	"log"

	"github.com/zfl1011/aiosqlite3/internal/shell"
)

func main() {
	if err := shell.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
