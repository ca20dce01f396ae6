package main

import cmd "github.com/rohmanhakim/web-scrapper/internal/cli"

func main() {
	cmd.Execute()
}
