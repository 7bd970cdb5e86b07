package main

import (
	"github.com/extkit/extkit/pkg/devdocs"
)

func main() {
	devdocs.New(devdocs.ConfigFromEnv()).Main()
}
