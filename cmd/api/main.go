package main

import "github.com/sefazor/eventreg-backend/cmd/api/cmd"

func main() {
	cmd.Execute()
}
