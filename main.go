package main

import "github.com/Serious-senpai/min-timespan-delivery-v2/cmd"

func main() {
	cmd.Execute()
}
