package parameter

import "time"

// View
const (
	// ViewFOV is the horizontal field of view (radians, 60°)
	ViewFOV = 1.0471975511965976

	// ViewTick is the simulation tick of the terminal viewer
	ViewTick = 33 * time.Millisecond

	// CastBatchMin is the smallest column batch handed to one worker
	CastBatchMin = 16
)

// Server
const (
	// ServeAddr is the default listen address of the column-stream server
	ServeAddr = ":8090"

	// ServeColumns is the default column count streamed per frame
	ServeColumns = 160

	// ServeFrameInterval paces streamed frames
	ServeFrameInterval = 50 * time.Millisecond

	// ServeSendBuffer is the per-client outbound frame queue
	ServeSendBuffer = 16
)
