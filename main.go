package main

import "github.com/agridocs/cloudapi/cmd"

func main() {
	cmd.Execute()
}
