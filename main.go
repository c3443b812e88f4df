package main

import "timefill/cmd"

func main() {
	cmd.Execute()
}
