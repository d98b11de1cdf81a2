package main

import "github.com/Qovery/pleco-iam/cmd"

func main() {
	cmd.Execute()
}
