package main

import "github.com/santiagomed/devtut/cli"

func main() {
	cli.Execute()
}
