package main

import "archive-manager/cmd"

func main() {
	cmd.Execute()
}
