package types

// Enum values for the global mining mode shared by the whole fleet.
type Mode string

const (
	ModeP2Pool Mode = "P2POOL"
	ModeXvb    Mode = "XVB"
	ModeSplit  Mode = "SPLIT"
)

func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the closed set of modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeP2Pool, ModeXvb, ModeSplit:
		return true
	default:
		return false
	}
}

// PoolVariant identifies the p2pool sidechain the local node participates in.
// The variant determines PPLNS window math (block time differs per chain).
type PoolVariant string

const (
	VariantMain    PoolVariant = "Main"
	VariantMini    PoolVariant = "Mini"
	VariantNano    PoolVariant = "Nano"
	VariantUnknown PoolVariant = "Unknown"
)

func (v PoolVariant) String() string {
	return string(v)
}
