package main

import "nalanda/cmd/cli/command"

func main() {
	command.Execute()
}
