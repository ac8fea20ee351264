package main

import "github.com/MeKo-Tech/procnoise/internal/cmd"

func main() {
	cmd.Execute()
}
