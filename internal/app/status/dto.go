package status

import "timelapse/internal/domain/world"

type Request struct{}

type Response struct {
	State world.Snapshot
}
