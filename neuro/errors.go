package neuro

import "errors"

// Errors
var (
	ErrBadVertexCount    = errors.New("graph needs at least 2 vertices")
	ErrBadEncoding       = errors.New("bad graph encoding")
	ErrBadEdgeIdx        = errors.New("bad signed edge index")
	ErrBadMethod         = errors.New("scoring method must be 1, 2 or 3")
	ErrBadPenalty        = errors.New("bad penalty value")
	ErrNoStepBudget      = errors.New("either a fixed step count or a memory bound is required")
	ErrBadBatchSize      = errors.New("batch size must be > 0")
	ErrTooFewNeurons     = errors.New("at least 2 spike trains are required")
	ErrBinCountMismatch  = errors.New("spike trains have unequal bin counts")
	ErrBadBinValue       = errors.New("spike bin value must be 0 or 1")
	ErrTruncatedSpikes   = errors.New("spike times end before the observation window")
	ErrBadSpikeTimes     = errors.New("bad spike time data")
	ErrBadSummary        = errors.New("bad dataset summary")
	ErrMouseNotFound     = errors.New("mouse not found in dataset summary")
	ErrInsufficientData  = errors.New("insufficient recording time")
	ErrCouplingsMismatch = errors.New("coupling vector does not match the edge space")
	ErrCacheClosed       = errors.New("coupling cache is closed")
)
