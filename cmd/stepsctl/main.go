package main

import (
	"github.com/joho/godotenv"

	"babysteps/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
