package main

import (
	"github.com/HazyCorp/hazyerr/cmd/hazyerr/cmd"

	_ "github.com/HazyCorp/hazyerr/example/targets"
)

func main() {
	cmd.Execute()
}
