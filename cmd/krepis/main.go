package main

import (
	"github.com/NVIDIA/krepis/pkg/cli"
)

func main() {
	cli.Execute()
}
