package main

import (
	"github.com/mchmarny/motorista/pkg/cli"
)

func main() {
	cli.Execute()
}
