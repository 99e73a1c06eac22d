package main

import (
	"context"
	"log"

	"github.com/nsqlite/sqlite3/internal/sqlite3ex"
)

func main() {
	if err := sqlite3ex.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
