// cmd/main.go
package main

import cmd "github.com/mwiater/arstats/cmd/arstats"

// main starts the arstats CLI by delegating to the cobra root command.
func main() {
	cmd.Execute()
}
