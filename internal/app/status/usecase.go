// Package status answers the control surface's GET /state: the current
// world snapshot obtained by replaying the entire stored action log.
package status

import (
	"context"

	"timelapse/internal/app/ports"
	"timelapse/internal/domain/world"
)

type UseCase struct {
	Portals ports.PortalRepository
	Actions ports.ActionRepository
}

func (u UseCase) Execute(ctx context.Context, _ Request) (Response, error) {
	catalog, err := u.Portals.ListAll(ctx)
	if err != nil {
		return Response{}, err
	}
	actions, err := u.Actions.ListOrderedByTime(ctx, 0, 0)
	if err != nil {
		return Response{}, err
	}

	sim := world.NewSimulator(catalog)
	for _, a := range actions {
		sim.ProcessAction(a)
	}
	return Response{State: sim.Snapshot()}, nil
}
