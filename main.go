package main

import "github.com/Alijeyrad/serviceflow_backend/cmd"

func main() {
	cmd.Execute()
}
