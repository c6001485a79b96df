// Package consensus implements the proof-of-authority scheduler: role
// assignment, validator turn-taking and the block proposal decision.
package consensus // import "telemesh.io/prototype/consensus"

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Role of a node in the fleet.
type Role uint8

// Node roles.
const (
	RoleSensor Role = iota
	RoleValidator
	RoleArchive
)

func (r Role) String() string {
	switch r {
	case RoleSensor:
		return "sensor"
	case RoleValidator:
		return "validator"
	case RoleArchive:
		return "archive"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// ParseRole decodes a role name as used in config files and operator
// commands.
func ParseRole(s string) (Role, error) {
	switch s {
	case "sensor":
		return RoleSensor, nil
	case "validator":
		return RoleValidator, nil
	case "archive":
		return RoleArchive, nil
	default:
		return 0, fmt.Errorf("consensus: unknown role: %q", s)
	}
}

// Role assignment strategies.
const (
	StrategyAddressHash  = "address-hash"
	StrategyJoinOrder    = "join-order"
	StrategyAllValidator = "all-validator"
	StrategyElected      = "elected"
)

// ErrUnknownStrategy is returned for an unrecognised strategy name.
var ErrUnknownStrategy = errors.New("consensus: unknown role strategy")

// SequenceStore persists the per-node join sequence number used by the
// join-order strategy. A zero sequence means unassigned.
type SequenceStore interface {
	NodeSequence() (uint32, error)
	SetNodeSequence(seq uint32) error
}

// RoleForAddress derives a deterministic role from a node address using a
// polynomial rolling hash. The distribution intentionally skews the fleet
// toward roughly 30% validators.
func RoleForAddress(address string) Role {
	var h uint32
	for i := 0; i < len(address); i++ {
		h = h*31 + uint32(address[i])
	}
	switch v := h % 100; {
	case v < 30:
		return RoleValidator
	case v < 95:
		return RoleSensor
	default:
		return RoleArchive
	}
}

// RoleForJoinOrder maps a persisted join sequence number to a role: the
// first three nodes validate, every tenth node archives, the rest sense.
func RoleForJoinOrder(seq uint32) Role {
	switch {
	case seq <= 3:
		return RoleValidator
	case seq%10 == 0:
		return RoleArchive
	default:
		return RoleSensor
	}
}

// Config for the scheduler.
type Config struct {
	Address         string
	BlockInterval   time.Duration
	EmergencyMargin int
	PoolCapacity    int
	Strategy        string
}

// Scheduler owns the local node's role and the proposal timing decisions.
type Scheduler struct {
	mu   sync.Mutex
	cfg  *Config
	role Role
}

// New returns a scheduler with the sensor role until AssignRole runs.
func New(cfg *Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// AssignRole selects the local role according to the configured strategy.
// It can be re-run on demand; the join-order strategy assigns and persists
// the node's sequence number on first use.
func (s *Scheduler) AssignRole(peerCount int, seqs SequenceStore) (Role, error) {
	var role Role
	switch s.cfg.Strategy {
	case StrategyAddressHash:
		role = RoleForAddress(s.cfg.Address)
	case StrategyJoinOrder:
		seq, err := seqs.NodeSequence()
		if err != nil {
			return 0, err
		}
		if seq == 0 {
			seq = uint32(peerCount) + 1
			if err := seqs.SetNodeSequence(seq); err != nil {
				return 0, err
			}
		}
		role = RoleForJoinOrder(seq)
	case StrategyAllValidator:
		role = RoleValidator
	case StrategyElected:
		// Network election is not implemented; fall back to the
		// deterministic address hash.
		role = RoleForAddress(s.cfg.Address)
	default:
		return 0, ErrUnknownStrategy
	}
	s.SetRole(role)
	return role, nil
}

// Role returns the current role.
func (s *Scheduler) Role() Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.role
}

// SetRole overrides the current role, e.g. from an operator command.
func (s *Scheduler) SetRole(role Role) {
	s.mu.Lock()
	s.role = role
	s.mu.Unlock()
}

// IsMyTurn reports whether the current time slot belongs to this node. With
// no known peers the node always has the turn. Every node computes this
// independently over peerCount+1 round-robin slots; agreement holds only
// insofar as peers observe the same peer count.
func (s *Scheduler) IsMyTurn(now time.Time, peerCount int) bool {
	if peerCount == 0 {
		return true
	}
	slotLen := int64(s.cfg.BlockInterval / time.Second)
	if slotLen <= 0 {
		slotLen = 1
	}
	slot := now.Unix() / slotLen
	id := int64(selfID(s.cfg.Address)) % int64(peerCount+1)
	return slot%int64(peerCount+1) == id
}

// ShouldPropose decides whether a validator should drain the pool into a
// block now: either the pool is close enough to capacity that waiting risks
// overflow (regardless of turn), or the block interval has elapsed, there
// is something to mine and the slot is ours.
func (s *Scheduler) ShouldPropose(poolSize, peerCount int, now, lastBlock time.Time) bool {
	if poolSize >= s.cfg.PoolCapacity-s.cfg.EmergencyMargin {
		return true
	}
	if now.Sub(lastBlock) >= s.cfg.BlockInterval && poolSize > 0 {
		return s.IsMyTurn(now, peerCount)
	}
	return false
}

// selfID picks a stable identity byte out of the node address.
func selfID(address string) byte {
	if len(address) > 15 {
		return address[15]
	}
	if len(address) > 0 {
		return address[len(address)-1]
	}
	return 0
}
