package proxyclient

import (
	"encoding/json"
	"fmt"
)

// Summary is the proxy-wide view returned by GET /1/summary. Only the fields
// the arbiter reads are mapped.
type Summary struct {
	ID       string `json:"id"`
	WorkerID string `json:"worker_id"`
	Uptime   int64  `json:"uptime"`
	Hashrate struct {
		// Total holds averages over increasing windows; index 0 is the
		// shortest (1m on stock builds).
		Total []float64 `json:"total"`
	} `json:"hashrate"`
	Miners struct {
		Now int `json:"now"`
		Max int `json:"max"`
	} `json:"miners"`
	Upstreams struct {
		Active int `json:"active"`
		Total  int `json:"total"`
	} `json:"upstreams"`
	Results struct {
		Accepted    int64 `json:"accepted"`
		Rejected    int64 `json:"rejected"`
		HashesTotal int64 `json:"hashes_total"`
	} `json:"results"`
}

// WorkersResponse is the reply to GET /1/workers.
type WorkersResponse struct {
	Hashrate struct {
		Total []float64 `json:"total"`
	} `json:"hashrate"`
	Mode    string        `json:"mode"`
	Workers []WorkerEntry `json:"workers"`
}

// WorkerEntry is one row of the workers table. The proxy encodes it as a
// positional JSON array mixing strings and numbers, hence the custom
// unmarshaller.
type WorkerEntry struct {
	Name        string
	IP          string
	Connections int64
	Accepted    int64
	Rejected    int64
	Invalid     int64
	Hashes      int64
	// LastShareMs is a unix timestamp in milliseconds.
	LastShareMs int64
	Hashrate1m  float64
	Hashrate10m float64
	Hashrate1h  float64
	Hashrate12h float64
	Hashrate24h float64
}

func (w *WorkerEntry) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("worker entry is not an array: %w", err)
	}
	if len(fields) < 13 {
		return fmt.Errorf("worker entry has %d fields, expected 13", len(fields))
	}

	strs := []struct {
		idx int
		dst *string
	}{
		{0, &w.Name},
		{1, &w.IP},
	}
	for _, s := range strs {
		if err := json.Unmarshal(fields[s.idx], s.dst); err != nil {
			return fmt.Errorf("worker entry field %d: %w", s.idx, err)
		}
	}

	ints := []struct {
		idx int
		dst *int64
	}{
		{2, &w.Connections},
		{3, &w.Accepted},
		{4, &w.Rejected},
		{5, &w.Invalid},
		{6, &w.Hashes},
		{7, &w.LastShareMs},
	}
	for _, i := range ints {
		if err := json.Unmarshal(fields[i.idx], i.dst); err != nil {
			return fmt.Errorf("worker entry field %d: %w", i.idx, err)
		}
	}

	floats := []struct {
		idx int
		dst *float64
	}{
		{8, &w.Hashrate1m},
		{9, &w.Hashrate10m},
		{10, &w.Hashrate1h},
		{11, &w.Hashrate12h},
		{12, &w.Hashrate24h},
	}
	for _, f := range floats {
		if err := json.Unmarshal(fields[f.idx], f.dst); err != nil {
			return fmt.Errorf("worker entry field %d: %w", f.idx, err)
		}
	}

	return nil
}
