package hitime

// TrackBitRateTier enumerates the Mark4/VLBA track bit-rate bands used by
// Mark4 Memo 230 Table 2's sub-millisecond correction.
type TrackBitRateTier int

const (
	TierUnknown TrackBitRateTier = iota
	Tier2Mbps
	Tier4Mbps
	Tier8Mbps
	Tier16Mbps
	Tier32Mbps
	Tier64Mbps
)

// TierForBitRate classifies a track bit rate (bits/sec) into its Memo 230
// Table 2 tier.
func TierForBitRate(bitsPerSec int64) TrackBitRateTier {
	switch {
	case bitsPerSec <= 2_000_000:
		return Tier2Mbps
	case bitsPerSec <= 4_000_000:
		return Tier4Mbps
	case bitsPerSec <= 8_000_000:
		return Tier8Mbps
	case bitsPerSec <= 16_000_000:
		return Tier16Mbps
	case bitsPerSec <= 32_000_000:
		return Tier32Mbps
	default:
		return Tier64Mbps
	}
}

// correctionFunc adjusts a decoded sub-second fraction (in units of
// microseconds) for the systematic offset of its tier.
type correctionFunc func(microseconds int64) int64

// mark4CorrectionTable maps each tier to its Memo 230 Table 2 correction.
// Consulted only inside DecodeTime for Mark4/VLBA, never by the header
// engine itself, per the design note separating field extraction from
// time-code correction.
var mark4CorrectionTable = map[TrackBitRateTier]correctionFunc{
	TierUnknown: func(us int64) int64 { return us },
	Tier2Mbps:   func(us int64) int64 { return us },
	Tier4Mbps:   func(us int64) int64 { return us - 1 },
	Tier8Mbps:   func(us int64) int64 { return us - 2 },
	Tier16Mbps:  func(us int64) int64 { return us - 4 },
	Tier32Mbps:  func(us int64) int64 { return us - 8 },
	Tier64Mbps:  func(us int64) int64 { return us - 16 },
}

// CorrectMark4SubMillisecond applies the tier-specific Memo 230 Table 2
// correction to a decoded sub-second microsecond offset.
func CorrectMark4SubMillisecond(tier TrackBitRateTier, microseconds int64) int64 {
	fn, ok := mark4CorrectionTable[tier]
	if !ok {
		return microseconds
	}
	return fn(microseconds)
}
