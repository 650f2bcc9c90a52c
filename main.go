package main

import "github.com/harvestmetrics/mixctl/cmd"

func main() {
	cmd.Execute()
}
