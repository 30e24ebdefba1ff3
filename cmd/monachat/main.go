// Command monachat is a terminal chat client for a fixed set of contacts.
package main

import "github.com/diogo/monachat/internal/commands"

func main() {
	commands.Execute()
}
