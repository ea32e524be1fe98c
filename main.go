package main

import "clearfeed/cmd"

func main() {
	cmd.Execute()
}
