package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"telemesh.io/prototype/config"

	"github.com/tav/golly/log"
)

func cmdInit(args []string, usage string) {

	opts := newOpts("init NODE_NAME [OPTIONS]", usage)
	configRoot := opts.Flags("-c", "--config-root").Label("PATH").String("path to the telemesh root directory [~/.telemesh]", defaultRootDir())
	networkName := opts.Flags("-n", "--network-name").Label("NAME").String("name of the mesh network to join [telemesh]", "telemesh")
	address := opts.Flags("-a", "--address").Label("ADDR").String("hardware address of the node [randomly generated]", "")
	params := opts.Parse(args)

	if err := ensureDir(*configRoot); err != nil {
		log.Fatal(err)
	}

	if len(params) < 1 {
		opts.PrintUsage()
		os.Exit(1)
	}

	nodeName := params[0]
	nodeDir := filepath.Join(*configRoot, nodeName)
	createUnlessExists(nodeDir)

	addr := *address
	if addr == "" {
		var err error
		addr, err = genAddress()
		if err != nil {
			log.Fatalf("Could not generate a node address: %s", err)
		}
	}
	if len(addr) != 17 {
		log.Fatalf("The node address %q is not a 17-character hardware address", addr)
	}

	cfg := config.Default()
	cfg.Address = addr
	cfg.NetworkName = *networkName

	if err := config.WriteNode(filepath.Join(nodeDir, "node.yaml"), cfg); err != nil {
		log.Fatal(err)
	}

	log.Infof("Initialised node %s with address %s", nodeName, addr)

}

// genAddress returns a random hardware address in the canonical colon
// separated form, with the locally administered bit set.
func genAddress() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	buf[0] = (buf[0] | 0x02) &^ 0x01
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		buf[0], buf[1], buf[2], buf[3], buf[4], buf[5]), nil
}
