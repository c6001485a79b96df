package main

import (
	"os"

	"github.com/tav/golly/fsutil"
	"github.com/tav/golly/log"
	"github.com/tav/golly/optparse"
)

const (
	dirPerms = 0700
)

func createUnlessExists(path string) {
	if exists, _ := fsutil.Exists(path); exists {
		log.Fatalf("A directory already exists at: %s", path)
	}
	if err := os.Mkdir(path, dirPerms); err != nil {
		log.Fatal(err)
	}
}

func defaultRootDir() string {
	return os.ExpandEnv("$HOME/.telemesh")
}

func ensureDir(path string) error {
	if exists, err := fsutil.Exists(path); exists {
		return err
	}
	return os.Mkdir(path, dirPerms)
}

func newOpts(command string, usage string) *optparse.Parser {
	return optparse.New("Usage: telemesh " + command + "\n\n  " + usage + "\n")
}
