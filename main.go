package main

import "memories-backend/cmd"

func main() {
	cmd.Run()
}
