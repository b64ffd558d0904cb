package model

const (
	KVCollection = "kv_store"

	// Fixed _id values inside the kv collection.
	DonationStatsID = "donation_stats"
	SnapshotID      = "snapshot_latest"
)

// DonationStatsDocument is the singleton record of donation performance and
// the active mode label. Fields are updated individually with $set so a
// mode flip never rewrites the averages.
type DonationStatsDocument struct {
	ID string `bson:"_id"`
	// Mode is the physical mode (P2POOL or XVB); CurrentMode is the
	// human-readable label shown on dashboards, e.g. "XVB (Split)".
	Mode             string  `bson:"mode"`
	CurrentMode      string  `bson:"current_mode"`
	Avg1h            float64 `bson:"avg_1h"`
	Avg24h           float64 `bson:"avg_24h"`
	FailCount        int     `bson:"fail_count"`
	TotalDonatedSecs int64   `bson:"total_donated_secs"`
	// LastUpdate is a unix timestamp, bumped only when a numeric field
	// changed.
	LastUpdate int64 `bson:"last_update"`
}

// SnapshotDocument holds the opaque aggregated-state blob written every tick
// and read once at boot to warm the dashboard.
type SnapshotDocument struct {
	ID   string `bson:"_id"`
	Data []byte `bson:"data"`
}
