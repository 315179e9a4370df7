package main

import "github.com/HerbCaudill/journal-calendar/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
