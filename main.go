package main

import "github.com/TheMaksoo/kartlog/cmd"

func main() {
	cmd.Execute()
}
