package main

import "gadgethub/cli"

func main() {
	cli.Execute()
}
