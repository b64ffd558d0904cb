package workerclient

// Summary is the slice of an xmrig /1/summary reply the arbiter reads.
// xmrig reports null for averaging windows it has not filled yet, so the
// totals are pointers with zero-defaulting accessors.
type Summary struct {
	ID       string `json:"id"`
	WorkerID string `json:"worker_id"`
	Uptime   int64  `json:"uptime"`
	Hashrate struct {
		Total []*float64 `json:"total"`
	} `json:"hashrate"`
	Results struct {
		SharesGood  int64 `json:"shares_good"`
		SharesTotal int64 `json:"shares_total"`
		AvgTime     int64 `json:"avg_time"`
		HashesTotal int64 `json:"hashes_total"`
	} `json:"results"`
}

func (s *Summary) hashrateAt(idx int) float64 {
	if idx >= len(s.Hashrate.Total) || s.Hashrate.Total[idx] == nil {
		return 0
	}
	return *s.Hashrate.Total[idx]
}

// Hashrate10s is the shortest live window.
func (s *Summary) Hashrate10s() float64 { return s.hashrateAt(0) }

// Hashrate60s is the one minute average.
func (s *Summary) Hashrate60s() float64 { return s.hashrateAt(1) }

// Hashrate15m is the stable window the decision engine works from.
func (s *Summary) Hashrate15m() float64 { return s.hashrateAt(2) }

// StableHashrate picks the longest filled window, falling back to shorter
// ones for freshly started workers.
func (s *Summary) StableHashrate() float64 {
	if hr := s.Hashrate15m(); hr > 0 {
		return hr
	}
	if hr := s.Hashrate60s(); hr > 0 {
		return hr
	}
	return s.Hashrate10s()
}
