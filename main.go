package main

import "github.com/lucashald/skill-check/cmd"

func main() {
	cmd.Execute()
}
