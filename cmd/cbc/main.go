package main

import (
	"os"

	"github.com/carbonblack/cbc-sdk-go/cmd/cbc/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
