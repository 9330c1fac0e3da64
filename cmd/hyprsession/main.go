package main

import "github.com/d-kuro/hyprsession/internal/cmd"

func main() {
	cmd.Execute()
}
