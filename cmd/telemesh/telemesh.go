package main

import (
	"github.com/tav/golly/optparse"
)

func main() {
	cmds := map[string]func([]string, string){
		"init": cmdInit,
		"run":  cmdRun,
	}
	info := map[string]string{
		"init": "initialise a new node configuration",
		"run":  "run the telemesh node",
	}
	optparse.Commands("telemesh", "0.0.1", cmds, info)
}
