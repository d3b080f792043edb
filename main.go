package main

import "github.com/kebairia/backupwatch/cmd"

func main() {
	cmd.Execute()
}
