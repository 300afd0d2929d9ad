package main

import "github.com/MeKo-Tech/mtm/cmd/mtm/cmd"

func main() {
	cmd.Execute()
}
