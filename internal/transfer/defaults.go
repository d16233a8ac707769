package transfer

import "github.com/five82/jvlbi/internal/constraints"

// defaultConstraintInput is the baseline constraint set a mode's build
// function hands to BuildChain before any per-connect argv overrides;
// concrete modes adjust MTU/NMTU to match their transport protocol.
func defaultConstraintInput() constraints.Set {
	return constraints.Set{
		constraints.Blocksize:           64 * 1024,
		constraints.MTU:                 constraints.Unconstrained,
		constraints.CompressOffset:      0,
		constraints.ApplicationOverhead: 0,
		constraints.ProtocolOverhead:    0,
		constraints.NMTU:                constraints.Unconstrained,
	}
}

// queueCapacity is the depth of every intermediate queue a linear chain
// appends between its steps.
const queueCapacity = 16
