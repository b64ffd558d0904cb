package types

// PoolEntry is one upstream pool in an xmrig or xmrig-proxy configuration.
// Switching flips which entry is enabled rather than removing entries, so a
// manual inspection of the config always shows both upstreams.
type PoolEntry struct {
	URL     string `json:"url"`
	User    string `json:"user"`
	Pass    string `json:"pass"`
	Enabled bool   `json:"enabled"`
	Coin    string `json:"coin"`
}
