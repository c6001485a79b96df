package api

// Error is the JSON shape of a failed request.
type Error struct {
	Error string `json:"error"`
}

// StatusResponse is the node snapshot served to dashboards.
type StatusResponse struct {
	Address      string      `json:"address"`
	BlockCount   int         `json:"block_count"`
	Head         *HeaderInfo `json:"head,omitempty"`
	MemoryOnly   bool        `json:"memory_only"`
	NetworkName  string      `json:"network_name"`
	PeerCount    int         `json:"peer_count"`
	PoolCapacity int         `json:"pool_capacity"`
	PoolSize     int         `json:"pool_size"`
	Role         string      `json:"role"`
	TotalBlocks  uint32      `json:"total_blocks"`
	UptimeSecs   int64       `json:"uptime_secs"`
}

// HeaderInfo is the JSON shape of a block header. Digests are hex-encoded.
type HeaderInfo struct {
	Index        uint32 `json:"index"`
	Timestamp    uint32 `json:"timestamp"`
	TxCount      uint8  `json:"tx_count"`
	BlockHash    string `json:"block_hash"`
	PreviousHash string `json:"previous_hash"`
	Validator    string `json:"validator"`
}

// ChainResponse lists the retained chain, oldest first.
type ChainResponse struct {
	Headers []HeaderInfo `json:"headers"`
}

// ReadingInfo is the JSON shape of a telemetry reading.
type ReadingInfo struct {
	SensorID       string  `json:"sensor_id"`
	Temperature    float32 `json:"temperature"`
	Humidity       float32 `json:"humidity"`
	Pressure       float32 `json:"pressure"`
	BatteryVoltage float32 `json:"battery_voltage"`
	Timestamp      uint32  `json:"timestamp"`
	RSSI           int16   `json:"rssi"`
	Quality        uint8   `json:"quality"`
}

// TransactionInfo is the JSON shape of a pooled transaction.
type TransactionInfo struct {
	TxHash    string      `json:"tx_hash"`
	Reading   ReadingInfo `json:"reading"`
	Signature string      `json:"signature"`
	Verified  bool        `json:"verified"`
}

// PoolResponse lists the pooled transactions, oldest first.
type PoolResponse struct {
	Capacity     int               `json:"capacity"`
	Transactions []TransactionInfo `json:"transactions"`
}

// PeersResponse lists the known peer addresses.
type PeersResponse struct {
	Peers []string `json:"peers"`
}

// TelemetryResponse lists query results from the pool.
type TelemetryResponse struct {
	Readings []ReadingInfo `json:"readings"`
}

// RoleRequest carries an operator role override.
type RoleRequest struct {
	Role string `json:"role"`
}

// RoleResponse confirms the active role.
type RoleResponse struct {
	Role string `json:"role"`
}

// OKResponse confirms a side-effecting command.
type OKResponse struct {
	Status string `json:"status"`
}
