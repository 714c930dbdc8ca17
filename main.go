package main

import "github.com/kiesman99/planraster/cmd"

func main() {
	cmd.Execute()
}
