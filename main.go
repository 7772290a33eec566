package main

import "github.com/MyCarrier-DevOps/go-versionist/cmd"

func main() {
	cmd.Execute()
}
