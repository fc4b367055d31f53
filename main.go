// ./main.go
package main

import (
	"github.com/xkilldash9x/uxsim/cmd"
)

// main is the entry point for the uxsim CLI.
func main() {
	cmd.Execute()
}
