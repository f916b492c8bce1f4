package main

import "github.com/iksnae/worklog-sync/cmd"

func main() {
	cmd.Execute()
}
