// Package api exposes the operator-facing HTTP surface of a node: status,
// chain and pool inspection, telemetry queries, role overrides and storage
// commands.
package api

import (
	"encoding/hex"
	"net/http"

	"telemesh.io/prototype/consensus"
	"telemesh.io/prototype/ledger"
	"telemesh.io/prototype/node"
	"telemesh.io/prototype/telemetry"
)

// Service is the operator API service boundary.
type Service interface {
	Chain() (ChainResponse, int, error)
	Clear() (int, error)
	Peers() (PeersResponse, int, error)
	Pool() (PoolResponse, int, error)
	Save() (int, error)
	SetRole(role string) (RoleResponse, int, error)
	Status() (StatusResponse, int, error)
	Telemetry(sensorID string, from, to uint32) (TelemetryResponse, int, error)
}

type service struct {
	node *node.Node
}

// NewService returns a Service backed by the given node.
func NewService(n *node.Node) Service {
	return &service{node: n}
}

func headerInfo(h ledger.Header) HeaderInfo {
	return HeaderInfo{
		Index:        h.Index,
		Timestamp:    h.Timestamp,
		TxCount:      h.TxCount,
		BlockHash:    hex.EncodeToString(h.BlockHash[:]),
		PreviousHash: hex.EncodeToString(h.PreviousHash[:]),
		Validator:    h.Validator,
	}
}

func readingInfo(r telemetry.Reading) ReadingInfo {
	return ReadingInfo{
		SensorID:       r.SensorID,
		Temperature:    r.Temperature,
		Humidity:       r.Humidity,
		Pressure:       r.Pressure,
		BatteryVoltage: r.BatteryVoltage,
		Timestamp:      r.Timestamp,
		RSSI:           r.RSSI,
		Quality:        r.Quality,
	}
}

func (s *service) Status() (StatusResponse, int, error) {
	st := s.node.Status()
	resp := StatusResponse{
		Address:      st.Address,
		BlockCount:   st.BlockCount,
		MemoryOnly:   st.MemoryOnly,
		NetworkName:  st.NetworkName,
		PeerCount:    st.PeerCount,
		PoolCapacity: st.PoolCapacity,
		PoolSize:     st.PoolSize,
		Role:         st.Role.String(),
		TotalBlocks:  st.TotalBlocks,
		UptimeSecs:   int64(st.Uptime.Seconds()),
	}
	if st.Head != nil {
		head := headerInfo(*st.Head)
		resp.Head = &head
	}
	return resp, http.StatusOK, nil
}

func (s *service) Chain() (ChainResponse, int, error) {
	headers := s.node.Headers()
	resp := ChainResponse{Headers: make([]HeaderInfo, len(headers))}
	for i, h := range headers {
		resp.Headers[i] = headerInfo(h)
	}
	return resp, http.StatusOK, nil
}

func (s *service) Pool() (PoolResponse, int, error) {
	txs := s.node.PoolTransactions()
	resp := PoolResponse{
		Capacity:     s.node.Status().PoolCapacity,
		Transactions: make([]TransactionInfo, len(txs)),
	}
	for i, tx := range txs {
		resp.Transactions[i] = TransactionInfo{
			TxHash:    hex.EncodeToString(tx.TxHash[:]),
			Reading:   readingInfo(tx.Reading),
			Signature: hex.EncodeToString(tx.Signature[:]),
			Verified:  tx.Verified,
		}
	}
	return resp, http.StatusOK, nil
}

func (s *service) Peers() (PeersResponse, int, error) {
	return PeersResponse{Peers: s.node.Peers()}, http.StatusOK, nil
}

func (s *service) Telemetry(sensorID string, from, to uint32) (TelemetryResponse, int, error) {
	readings := s.node.Query(sensorID, from, to)
	resp := TelemetryResponse{Readings: make([]ReadingInfo, len(readings))}
	for i, r := range readings {
		resp.Readings[i] = readingInfo(r)
	}
	return resp, http.StatusOK, nil
}

func (s *service) SetRole(role string) (RoleResponse, int, error) {
	r, err := consensus.ParseRole(role)
	if err != nil {
		return RoleResponse{}, http.StatusBadRequest, err
	}
	s.node.SetRole(r)
	return RoleResponse{Role: r.String()}, http.StatusOK, nil
}

func (s *service) Save() (int, error) {
	if err := s.node.Save(); err != nil {
		return http.StatusInternalServerError, err
	}
	return http.StatusOK, nil
}

func (s *service) Clear() (int, error) {
	if err := s.node.ClearStorage(); err != nil {
		return http.StatusInternalServerError, err
	}
	return http.StatusOK, nil
}
