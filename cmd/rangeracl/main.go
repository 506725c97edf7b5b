package main

import "github.com/ranger-acl/rangeracl/cmd/rangeracl/cmd"

func main() {
	cmd.Execute()
}
