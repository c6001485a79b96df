// Package node ties the ledger, pool, scheduler, network and storage
// together in a cooperative polling loop.
package node // import "telemesh.io/prototype/node"

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"telemesh.io/prototype/consensus"
	"telemesh.io/prototype/internal/log"
	"telemesh.io/prototype/internal/log/fld"
	"telemesh.io/prototype/ledger"
	"telemesh.io/prototype/network"
	"telemesh.io/prototype/storage"
	"telemesh.io/prototype/telemetry"
	"telemesh.io/prototype/txpool"
)

const dirPerms = 0700

// Error values.
var (
	ErrDirectoryMissing = errors.New("node: config is missing a value for Directory")
	ErrAddressMissing   = errors.New("node: config is missing a value for Address")
)

// Config represents the assembled runtime configuration of a node.
type Config struct {
	Address          string
	AnnounceInterval time.Duration
	APIPort          int
	BlockInterval    time.Duration
	Directory        string
	EmergencyMargin  int
	IdleDelay        time.Duration
	MaxBlocks        int
	MaxPeers         int
	MDNS             bool
	NetworkName      string
	PoolSize         int
	QueueSize        int
	RoleStrategy     string
	Sampler          telemetry.Sampler
	SaveInterval     time.Duration
	SensorID         string
	StatusInterval   time.Duration
	StorageType      string
	TelemetryInterval time.Duration
	Transport        network.Transport
}

// Node is a running telemesh node.
type Node struct {
	cfg   *Config
	mu    sync.Mutex // protects ledger, store, memoryOnly, lastBlock
	chain *ledger.Ledger
	pool  *txpool.Pool
	sched *consensus.Scheduler
	net   *network.Service
	store storage.Store

	sampler    telemetry.Sampler
	memoryOnly bool
	start      time.Time

	lastAnnounce  time.Time
	lastBlock     time.Time
	lastStatus    time.Time
	lastSave      time.Time
	lastTelemetry time.Time
}

// New wires a node together and recovers its state: open storage (falling
// back to memory-only operation if it is unavailable), load or create the
// chain, assign the role and attach the broadcast service.
func New(cfg *Config) (*Node, error) {
	if cfg.Address == "" {
		return nil, ErrAddressMissing
	}
	applyDefaults(cfg)

	store, memoryOnly, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	n := &Node{
		cfg:        cfg,
		chain:      ledger.New(cfg.MaxBlocks),
		memoryOnly: memoryOnly,
		pool:       txpool.New(cfg.PoolSize),
		sampler:    cfg.Sampler,
		store:      store,
	}
	if n.sampler == nil {
		n.sampler = telemetry.NewSimSampler(cfg.SensorID, time.Now().UnixNano())
	}

	n.recover()

	n.net = network.New(&network.Config{
		MaxPeers:    cfg.MaxPeers,
		QueueSize:   cfg.QueueSize,
		SelfAddress: cfg.Address,
		Transport:   cfg.Transport,
	})

	n.sched = consensus.New(&consensus.Config{
		Address:         cfg.Address,
		BlockInterval:   cfg.BlockInterval,
		EmergencyMargin: cfg.EmergencyMargin,
		PoolCapacity:    cfg.PoolSize,
		Strategy:        cfg.RoleStrategy,
	})
	role, err := n.sched.AssignRole(n.net.Peers().Count(), n.store)
	if err != nil {
		return nil, err
	}
	log.Info("Role assigned", fld.Role(role), log.String("strategy", cfg.RoleStrategy))
	return n, nil
}

func applyDefaults(cfg *Config) {
	if cfg.AnnounceInterval == 0 {
		cfg.AnnounceInterval = 60 * time.Second
	}
	if cfg.BlockInterval == 0 {
		cfg.BlockInterval = 30 * time.Second
	}
	if cfg.EmergencyMargin == 0 {
		cfg.EmergencyMargin = 4
	}
	if cfg.IdleDelay == 0 {
		cfg.IdleDelay = 100 * time.Millisecond
	}
	if cfg.MaxBlocks == 0 {
		cfg.MaxBlocks = ledger.DefaultMaxBlocks
	}
	if cfg.MaxPeers == 0 {
		cfg.MaxPeers = 10
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = 20
	}
	if cfg.RoleStrategy == "" {
		cfg.RoleStrategy = consensus.StrategyAddressHash
	}
	if cfg.SaveInterval == 0 {
		cfg.SaveInterval = 60 * time.Second
	}
	if cfg.SensorID == "" {
		cfg.SensorID = defaultSensorID(cfg.Address)
	}
	if cfg.StatusInterval == 0 {
		cfg.StatusInterval = 30 * time.Second
	}
	if cfg.TelemetryInterval == 0 {
		cfg.TelemetryInterval = 10 * time.Second
	}
}

// defaultSensorID derives a sensor identity from the tail of the node
// address, mirroring the identifiers the fleet already uses.
func defaultSensorID(address string) string {
	suffix := address
	if len(address) > 9 {
		suffix = address[9:]
	}
	id := "tm_" + suffix
	if len(id) > telemetry.SensorIDSize {
		id = id[:telemetry.SensorIDSize]
	}
	return id
}

func openStore(cfg *Config) (storage.Store, bool, error) {
	if cfg.StorageType == "memory" {
		return storage.NewMem(cfg.MaxBlocks), false, nil
	}
	dir := cfg.Directory
	if dir == "" {
		return nil, false, ErrDirectoryMissing
	}
	if !filepath.IsAbs(dir) {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, false, err
		}
		dir = abs
	}
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return nil, false, err
		}
		log.Info("Creating runtime directory", log.String("path", dir))
		if err = os.MkdirAll(dir, dirPerms); err != nil {
			return nil, false, err
		}
	}
	store, err := storage.NewBadger(filepath.Join(dir, "store"), cfg.MaxBlocks)
	if err != nil {
		// Degrade to memory-only operation rather than halting.
		log.Error("Storage unavailable, continuing memory-only", fld.Err(err))
		return storage.NewMem(cfg.MaxBlocks), true, nil
	}
	return store, false, nil
}

// recover attempts to load a usable snapshot; zero recovered blocks fall
// back to genesis creation.
func (n *Node) recover() {
	now := uint32(time.Now().Unix())
	blocks, err := n.store.LoadChain()
	if err != nil && err != storage.ErrNotFound && err != storage.ErrCorrupt {
		log.Error("Could not load chain snapshot", fld.Err(err))
	}
	if len(blocks) == 0 {
		genesis := n.chain.CreateGenesis(n.cfg.Address, now)
		log.Info("Genesis block created", fld.BlockHash(genesis.BlockHash[:]))
		return
	}
	total := uint32(len(blocks))
	if meta, err := n.store.LoadMeta(); err == nil && meta.TotalBlocks > total {
		total = meta.TotalBlocks
	}
	n.chain.Restore(blocks, total)
	log.Info("Chain recovered", fld.TotalBlocks(n.chain.TotalBlocks()), log.Int("retained", n.chain.BlockCount()))
	txs, err := n.store.LoadPool()
	if err != nil {
		return
	}
	for _, tx := range txs {
		if err := n.pool.Submit(tx); err != nil {
			break
		}
	}
	log.Info("Pool recovered", fld.PoolSize(n.pool.Size()))
}

// Run drives the cooperative task loop until the context is cancelled. No
// task blocks: each checks elapsed time against its own last-run stamp.
func (n *Node) Run(ctx context.Context) error {
	if n.cfg.MDNS {
		if err := announceMDNS(n.cfg.NetworkName, n.cfg.Address, n.cfg.APIPort); err != nil {
			log.Error("Could not announce over mDNS", fld.Err(err))
		}
	}
	if err := n.net.Announce(); err != nil {
		log.Error("Initial peer announcement failed", fld.Err(err))
	}
	now := time.Now()
	n.start = now
	n.lastAnnounce = now
	n.lastBlock = now
	n.lastSave = now
	n.lastStatus = now
	n.lastTelemetry = now
	for {
		n.drainEvents()
		now = time.Now()
		n.sensorTask(now)
		n.validatorTask(now)
		n.discoveryTask(now)
		n.saveTask(now)
		n.statusTask(now)
		select {
		case <-ctx.Done():
			n.shutdown()
			return ctx.Err()
		case <-time.After(n.cfg.IdleDelay):
		}
	}
}

func (n *Node) shutdown() {
	if err := n.save(); err != nil {
		log.Error("Could not save state on shutdown", fld.Err(err))
	}
	if err := n.cfg.Transport.Close(); err != nil {
		log.Error("Could not close the transport", fld.Err(err))
	}
	if err := n.store.Close(); err != nil {
		log.Error("Could not close the store", fld.Err(err))
	}
}

// drainEvents empties the inbound queue. All ledger, pool and peer-set
// mutation triggered by network traffic happens here, on the loop.
func (n *Node) drainEvents() {
	for {
		select {
		case ev := <-n.net.Events():
			n.handleEvent(ev)
		default:
			return
		}
	}
}

func (n *Node) handleEvent(ev network.Event) {
	if n.net.Peers().Add(ev.Sender) {
		log.Info("New peer discovered", fld.Address(ev.Sender), fld.PeerCount(n.net.Peers().Count()))
	}
	switch ev.Type {
	case network.MsgNewTelemetry:
		if err := n.pool.Submit(*ev.Tx); err != nil {
			log.Warn("Rejecting inbound transaction", fld.Sender(ev.Sender), fld.Err(err))
			return
		}
		log.Debug("Transaction pooled", fld.SensorID(ev.Tx.Reading.SensorID), fld.PoolSize(n.pool.Size()))
	case network.MsgNewBlock:
		// Header-only propagation: acknowledged, not adopted. A follow-up
		// full-block fetch would be needed to re-validate and sync.
		log.Info("Block header received", fld.BlockIndex(ev.Header.Index), fld.Validator(ev.Header.Validator))
	case network.MsgRequestChain, network.MsgChainData:
		log.Debug("Chain sync is not implemented", fld.MessageType(ev.Type), fld.Sender(ev.Sender))
	case network.MsgPeerAnnounce:
		log.Debug("Peer announcement", fld.Sender(ev.Sender))
	case network.MsgValidatorHeartbeat:
		log.Debug("Validator heartbeat", fld.Sender(ev.Sender))
	}
}

// sensorTask samples telemetry on the configured interval, pools it and
// broadcasts it. Archive nodes do not produce readings.
func (n *Node) sensorTask(now time.Time) {
	role := n.sched.Role()
	if role != consensus.RoleSensor && role != consensus.RoleValidator {
		return
	}
	if now.Sub(n.lastTelemetry) < n.cfg.TelemetryInterval {
		return
	}
	n.lastTelemetry = now
	reading := n.sampler.Sample(uint32(now.Unix()))
	tx := telemetry.NewTransaction(reading, n.cfg.Address)
	if err := n.pool.Submit(tx); err != nil {
		log.Warn("Local transaction rejected", fld.Err(err), fld.PoolSize(n.pool.Size()))
	}
	if err := n.net.BroadcastTransaction(&tx); err != nil {
		log.Error("Could not broadcast transaction", fld.Err(err))
	}
}

// validatorTask proposes and appends a block when the scheduler says so,
// then clears the pool, broadcasts the header and persists.
func (n *Node) validatorTask(now time.Time) {
	if n.sched.Role() != consensus.RoleValidator {
		return
	}
	n.mu.Lock()
	lastBlock := n.lastBlock
	n.mu.Unlock()
	poolSize := n.pool.Size()
	if poolSize == 0 || !n.sched.ShouldPropose(poolSize, n.net.Peers().Count(), now, lastBlock) {
		return
	}
	snapshot := n.pool.Snapshot(ledger.MaxTxPerBlock)
	n.mu.Lock()
	block := n.chain.Propose(snapshot, n.cfg.Address, uint32(now.Unix()))
	err := n.chain.Append(block)
	if err == nil {
		n.lastBlock = now
	}
	n.mu.Unlock()
	if err != nil {
		log.Error("Proposed block failed validation", fld.BlockIndex(block.Index), fld.Err(err))
		return
	}
	n.pool.Clear()
	log.Info("Block appended", fld.BlockIndex(block.Index), fld.TxCount(int(block.TxCount)), fld.BlockHash(block.BlockHash[:]))
	header := block.Header()
	if err := n.net.BroadcastHeader(&header); err != nil {
		log.Error("Could not broadcast block header", fld.Err(err))
	}
	if err := n.save(); err != nil {
		log.Error("Could not persist after append", fld.Err(err))
	}
}

// discoveryTask periodically broadcasts an empty peer announcement.
func (n *Node) discoveryTask(now time.Time) {
	if now.Sub(n.lastAnnounce) < n.cfg.AnnounceInterval {
		return
	}
	n.lastAnnounce = now
	if err := n.net.Announce(); err != nil {
		log.Error("Peer announcement failed", fld.Err(err))
		return
	}
	log.Debug("Peer announcement sent", fld.PeerCount(n.net.Peers().Count()))
}

// saveTask snapshots state on the configured interval.
func (n *Node) saveTask(now time.Time) {
	if now.Sub(n.lastSave) < n.cfg.SaveInterval {
		return
	}
	n.lastSave = now
	if err := n.save(); err != nil {
		log.Error("Periodic save failed", fld.Err(err))
	}
}

// statusTask logs a status snapshot on the configured interval.
func (n *Node) statusTask(now time.Time) {
	if now.Sub(n.lastStatus) < n.cfg.StatusInterval {
		return
	}
	n.lastStatus = now
	s := n.Status()
	log.Info("Status",
		fld.Role(s.Role),
		fld.TotalBlocks(s.TotalBlocks),
		log.Int("retained", s.BlockCount),
		fld.PoolSize(s.PoolSize),
		fld.PeerCount(s.PeerCount),
		log.Duration("uptime", s.Uptime),
	)
}

func (n *Node) save() error {
	n.mu.Lock()
	if n.memoryOnly {
		n.mu.Unlock()
		log.Debug("Skipping save in memory-only mode")
		return nil
	}
	blocks := n.chain.Retained()
	meta := &storage.Meta{
		BlockCount:   uint32(n.chain.BlockCount()),
		TotalBlocks:  n.chain.TotalBlocks(),
		LastSaveTime: uint32(time.Now().Unix()),
	}
	if head, ok := n.chain.Head(); ok {
		meta.LastValidator = head.Validator
	}
	store := n.store
	n.mu.Unlock()
	if err := store.SaveChain(blocks); err != nil {
		return err
	}
	if err := store.SaveMeta(meta); err != nil {
		return err
	}
	return store.SavePool(n.pool.Snapshot(-1))
}
