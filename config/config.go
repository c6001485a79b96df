package config // import "telemesh.io/prototype/config"

// NOTE: the order of some of the struct fields are purposefully not in
// alphabetical order so as to generate a more pleasing ordering when
// serialised to YAML.
import (
	"io/ioutil"
	"os"
	"time"

	"telemesh.io/prototype/internal/log"

	"gopkg.in/yaml.v2"
)

// API represents the configuration of the operator-facing HTTP API. A zero
// port disables it.
type API struct {
	Port int `yaml:",omitempty"`
}

// Consensus represents the configuration of the proof-of-authority
// scheduler.
type Consensus struct {
	BlockInterval   time.Duration `yaml:"block.interval"`
	EmergencyMargin int           `yaml:"emergency.margin"`
	MaxTxPerBlock   int           `yaml:"max.tx.per.block"`
	RoleStrategy    string        `yaml:"role.strategy"`
}

// Ledger represents the configuration of the in-memory chain.
type Ledger struct {
	MaxBlocks int `yaml:"max.blocks"`
}

// Logging represents the logging configuration of a node.
type Logging struct {
	ConsoleLevel log.Level `yaml:"console.level,omitempty"`
	FileLevel    log.Level `yaml:"file.level,omitempty"`
	FilePath     string    `yaml:"file.path,omitempty"`
}

// Network represents the configuration of the broadcast protocol.
type Network struct {
	AnnounceInterval time.Duration `yaml:"announce.interval"`
	ListenPort       int           `yaml:"listen.port"`
	MaxPeers         int           `yaml:"max.peers"`
	MDNS             bool          `yaml:",omitempty"`
	QueueSize        int           `yaml:"queue.size"`
}

// Pool represents the configuration of the transaction pool.
type Pool struct {
	Size int
}

// Storage represents the configuration of a node's underlying storage
// mechanism.
type Storage struct {
	Type         string
	SaveInterval time.Duration `yaml:"save.interval"`
}

// Telemetry represents the configuration of the simulated sensor.
type Telemetry struct {
	SensorID string        `yaml:"sensor.id,omitempty"`
	Interval time.Duration `yaml:"interval"`
}

// Node represents the configuration of an individual node in a telemesh
// network.
type Node struct {
	Address     string
	NetworkName string `yaml:"network.name"`
	API         *API   `yaml:",omitempty"`
	Consensus   *Consensus
	Ledger      *Ledger
	Logging     *Logging `yaml:",omitempty"`
	Network     *Network
	Pool        *Pool
	Storage     *Storage
	Telemetry   *Telemetry
}

// Default returns a Node config matching the fleet-wide defaults. The
// address is left for the caller to fill in.
func Default() *Node {
	return &Node{
		NetworkName: "telemesh",
		API:         &API{},
		Consensus: &Consensus{
			BlockInterval:   30 * time.Second,
			EmergencyMargin: 4,
			MaxTxPerBlock:   4,
			RoleStrategy:    "address-hash",
		},
		Ledger: &Ledger{
			MaxBlocks: 10,
		},
		Logging: &Logging{
			ConsoleLevel: log.InfoLevel,
		},
		Network: &Network{
			AnnounceInterval: 60 * time.Second,
			ListenPort:       7711,
			MaxPeers:         10,
			QueueSize:        64,
		},
		Pool: &Pool{
			Size: 20,
		},
		Storage: &Storage{
			Type:         "badger",
			SaveInterval: 60 * time.Second,
		},
		Telemetry: &Telemetry{
			Interval: 10 * time.Second,
		},
	}
}

// LoadNode will read the YAML file at the given path and return the
// corresponding Node config.
func LoadNode(path string) (*Node, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Node{}
	err = yaml.Unmarshal(data, cfg)
	return cfg, err
}

// WriteNode serialises the given Node config as YAML to the given path.
func WriteNode(path string, cfg *Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	return enc.Encode(cfg)
}
