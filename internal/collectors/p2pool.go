package collectors

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/moneropulse/xvb-arbiter/internal/config"
	"github.com/moneropulse/xvb-arbiter/internal/types"
)

// PPLNS window math per sidechain variant. The window is a fixed block
// count; only the sidechain block time differs between chains.
const (
	pplnsWindowBlocks = 2160

	blockTimeMain = 10 * time.Second
	blockTimeMini = 10 * time.Second
	blockTimeNano = 30 * time.Second
)

// WindowDuration returns how long a found share stays inside the PPLNS
// window for the given sidechain variant. Unknown variants use the Main
// chain math, the most conservative common case.
func WindowDuration(variant types.PoolVariant) time.Duration {
	switch variant {
	case types.VariantNano:
		return pplnsWindowBlocks * blockTimeNano
	case types.VariantMini:
		return pplnsWindowBlocks * blockTimeMini
	default:
		return pplnsWindowBlocks * blockTimeMain
	}
}

// DetectPoolVariant guesses the sidechain from peer addresses; each chain
// listens on its own well-known p2p port.
func DetectPoolVariant(peers []string) types.PoolVariant {
	counts := map[types.PoolVariant]int{}
	for _, p := range peers {
		switch {
		case strings.Contains(p, "37889"):
			counts[types.VariantMain]++
		case strings.Contains(p, "37888"):
			counts[types.VariantMini]++
		case strings.Contains(p, "37890"):
			counts[types.VariantNano]++
		}
	}

	winner := types.VariantUnknown
	best := 0
	for _, v := range []types.PoolVariant{types.VariantMain, types.VariantMini, types.VariantNano} {
		if counts[v] > best {
			best = counts[v]
			winner = v
		}
	}
	return winner
}

// PoolStats is the switching-relevant slice of the local node's pool stats
// plus derived share state.
type PoolStats struct {
	Variant         types.PoolVariant `json:"variant"`
	Hashrate        float64           `json:"hashrate"`
	Miners          int64             `json:"miners"`
	BlocksFound     int64             `json:"blocks_found"`
	SidechainHeight int64             `json:"sidechain_height"`
	Difficulty      int64             `json:"difficulty"`
	TotalHashes     int64             `json:"total_hashes"`
	SharesFound     int64             `json:"shares_found"`
	LastShareTime   time.Time         `json:"last_share_time"`
	// SharesInWindow is the critical input for the zero-share safety rule.
	SharesInWindow int `json:"shares_in_window"`
}

// P2PStats describes the node's p2p connectivity.
type P2PStats struct {
	Variant             types.PoolVariant `json:"variant"`
	OutgoingConnections int64             `json:"out_peers"`
	IncomingConnections int64             `json:"in_peers"`
	PeerListSize        int64             `json:"peers_count"`
	Uptime              int64             `json:"uptime"`
}

// NetworkStats is the Monero mainnet view the node maintains.
type NetworkStats struct {
	Difficulty int64   `json:"difficulty"`
	Height     int64   `json:"height"`
	Reward     int64   `json:"reward"`
	Hashrate   float64 `json:"hashrate"`
	Timestamp  int64   `json:"timestamp"`
}

// StratumWorker is one worker as announced to the local stratum server.
type StratumWorker struct {
	IP   string `json:"ip"`
	Name string `json:"name"`
}

// monero mainnet block target, used to derive network hashrate from
// difficulty when the stats file omits it.
const secondsPerMainchainBlock = 120

// Collector reads the stats files the p2pool node rewrites in place. Reads
// are tolerant: a missing or half-written file yields zero values, never an
// error, so one bad read cannot stall the telemetry loop.
type Collector struct {
	cfg *config.P2PoolConfig
	now func() time.Time
}

func New(cfg *config.P2PoolConfig) *Collector {
	return &Collector{cfg: cfg, now: time.Now}
}

type rawP2P struct {
	Peers               []string `json:"peers"`
	Connections         int64    `json:"connections"`
	IncomingConnections int64    `json:"incoming_connections"`
	PeerListSize        int64    `json:"peer_list_size"`
	Uptime              int64    `json:"uptime"`
}

type rawPool struct {
	PoolStatistics struct {
		HashRate            float64 `json:"hashRate"`
		Miners              int64   `json:"miners"`
		TotalBlocksFound    int64   `json:"totalBlocksFound"`
		SidechainHeight     int64   `json:"sidechainHeight"`
		SidechainDifficulty int64   `json:"sidechainDifficulty"`
		TotalHashes         int64   `json:"totalHashes"`
	} `json:"pool_statistics"`
}

type rawStratum struct {
	LastShareFoundTime int64    `json:"last_share_found_time"`
	SharesFound        int64    `json:"shares_found"`
	Workers            []string `json:"workers"`
}

type rawNetwork struct {
	Difficulty int64   `json:"difficulty"`
	Height     int64   `json:"height"`
	Reward     int64   `json:"reward"`
	Hash       float64 `json:"hash"`
	Timestamp  int64   `json:"timestamp"`
}

// readJSON decodes one stats file into out, leaving out untouched when the
// file is missing or currently being rewritten.
func readJSON(path string, out interface{}) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Str("path", path).Msg("failed to read stats file")
		}
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("failed to decode stats file")
	}
}

// PoolStats aggregates the pool, p2p and stratum files into the engine's
// view of the local node.
func (c *Collector) PoolStats() PoolStats {
	var p2p rawP2P
	readJSON(c.cfg.P2PStatsPath(), &p2p)
	var pool rawPool
	readJSON(c.cfg.PoolStatsPath(), &pool)
	var stratum rawStratum
	readJSON(c.cfg.StratumStatsPath(), &stratum)

	variant := DetectPoolVariant(p2p.Peers)

	stats := PoolStats{
		Variant:         variant,
		Hashrate:        pool.PoolStatistics.HashRate,
		Miners:          pool.PoolStatistics.Miners,
		BlocksFound:     pool.PoolStatistics.TotalBlocksFound,
		SidechainHeight: pool.PoolStatistics.SidechainHeight,
		Difficulty:      pool.PoolStatistics.SidechainDifficulty,
		TotalHashes:     pool.PoolStatistics.TotalHashes,
		SharesFound:     stratum.SharesFound,
	}
	if stratum.LastShareFoundTime > 0 {
		stats.LastShareTime = time.Unix(stratum.LastShareFoundTime, 0)
	}
	stats.SharesInWindow = SharesInWindow(stats.SharesFound, stats.LastShareTime, c.now(), WindowDuration(variant))
	return stats
}

// SharesInWindow reports whether the miner still holds a share inside the
// PPLNS window. The stratum file only exposes the latest share timestamp,
// so the answer is binary.
func SharesInWindow(sharesFound int64, lastShare, now time.Time, window time.Duration) int {
	if sharesFound <= 0 || lastShare.IsZero() {
		return 0
	}
	if now.Sub(lastShare) < window {
		return 1
	}
	return 0
}

func (c *Collector) P2PStats() P2PStats {
	var p2p rawP2P
	readJSON(c.cfg.P2PStatsPath(), &p2p)

	return P2PStats{
		Variant:             DetectPoolVariant(p2p.Peers),
		OutgoingConnections: p2p.Connections,
		IncomingConnections: p2p.IncomingConnections,
		PeerListSize:        p2p.PeerListSize,
		Uptime:              p2p.Uptime,
	}
}

func (c *Collector) NetworkStats() NetworkStats {
	var network rawNetwork
	readJSON(c.cfg.NetworkStatsPath(), &network)

	stats := NetworkStats{
		Difficulty: network.Difficulty,
		Height:     network.Height,
		Reward:     network.Reward,
		Hashrate:   network.Hash,
		Timestamp:  network.Timestamp,
	}
	if stats.Hashrate == 0 && stats.Difficulty > 0 {
		stats.Hashrate = float64(stats.Difficulty) / secondsPerMainchainBlock
	}
	return stats
}

// StratumWorkers parses the worker lines the stratum server publishes.
// Each line is a comma separated record starting with "ip:port" and
// carrying the self-reported name in the fifth field.
func (c *Collector) StratumWorkers() []StratumWorker {
	var stratum rawStratum
	readJSON(c.cfg.StratumStatsPath(), &stratum)

	workers := make([]StratumWorker, 0, len(stratum.Workers))
	for _, entry := range stratum.Workers {
		parts := strings.Split(entry, ",")
		if len(parts) == 0 || strings.TrimSpace(parts[0]) == "" {
			continue
		}
		ip, _, _ := strings.Cut(strings.TrimSpace(parts[0]), ":")

		name := "miner"
		if len(parts) >= 5 && strings.TrimSpace(parts[4]) != "" {
			name = strings.TrimSpace(parts[4])
		}
		workers = append(workers, StratumWorker{IP: ip, Name: name})
	}
	return workers
}
