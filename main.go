package main

import "github.com/maastricht-university/edmo-interaction/cmd"

func main() {
	cmd.Execute()
}
