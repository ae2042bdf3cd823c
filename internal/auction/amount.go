package auction

// Amount is an exact auction money amount in minor units.
// All arithmetic and comparisons run on int64; no floating point anywhere.
type Amount int64

// 1 CR is the display unit the auction operates in. Amounts on the wire
// are converted at the transport boundary; the core never formats.
const Crore Amount = 1_000_000_000_000

// InitialBudget is the fixed budget every bidder starts with.
const InitialBudget Amount = 10 * Crore
