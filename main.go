package main

import "github.com/Aftnet/NetMediaInfoLib/internal/cmd"

func main() {
	cmd.Execute()
}
