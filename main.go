package main

import (
	"os"

	"github.com/gocinema/gocinema/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
