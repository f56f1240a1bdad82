package main

import "github.com/taskhive/task-management/cmd"

func main() {
	cmd.Execute()
}
