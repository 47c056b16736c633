package route

import "errors"

var (
	// ErrInvalidInput: fewer than two waypoints, or unparseable coordinates.
	ErrInvalidInput = errors.New("route: invalid input")

	// ErrNoWaterNodeNear: an endpoint cannot reach any unblocked cell within
	// the snap radius.
	ErrNoWaterNodeNear = errors.New("route: no water cell near waypoint")

	// ErrNoPathFound: every tier was exhausted without producing a leg.
	ErrNoPathFound = errors.New("route: no path found")

	// ErrSearchBudget: a tier hit its expansion or step cap. Recovered
	// internally by falling through to the next tier.
	ErrSearchBudget = errors.New("route: search budget exceeded")
)
