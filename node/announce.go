package node

import (
	"fmt"
	"strings"

	"github.com/grandcat/zeroconf"
)

// announceMDNS registers the node on the local network so dashboards can
// find it. Discovery for consensus purposes runs over the broadcast
// transport instead; this is purely an operator convenience.
func announceMDNS(networkName, address string, port int) error {
	if port == 0 {
		// Without the API there is nothing for a dashboard to talk to.
		return nil
	}
	instance := "_" + strings.Replace(address, ":", "-", -1)
	service := fmt.Sprintf("_%s._telemesh", strings.ToLower(networkName))
	_, err := zeroconf.Register(instance, service, "local.", port, nil, nil)
	return err
}
