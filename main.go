package main

import "github.com/jjtimmons/gaml/cmd"

func main() {
	cmd.Execute()
}
