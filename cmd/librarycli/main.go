package main

import "libraryhub/cmd/librarycli/command"

func main() {
	command.Execute()
}
