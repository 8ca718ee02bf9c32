package reconcile

import (
	"fmt"
	"strings"

	"github.com/openmined/agentsync/internal/assets"
)

// Direction selects which client pairs a plan covers.
type Direction string

const (
	// DirectionPush copies the local client's assets to the others.
	DirectionPush Direction = "push"
	// DirectionPull copies the other clients' assets into the local client.
	DirectionPull Direction = "pull"
	// DirectionSync reconciles every selected pair.
	DirectionSync Direction = "sync"
	// DirectionSource mirrors one client onto all targets, itself included.
	DirectionSource Direction = "source"
)

func ParseDirection(raw string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(raw))); d {
	case DirectionPush, DirectionPull, DirectionSync, DirectionSource:
		return d, nil
	case "":
		return DirectionSync, nil
	default:
		return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidOptions, raw)
	}
}

func (d Direction) String() string {
	return string(d)
}

// Options control plan construction.
type Options struct {
	Direction Direction
	// LocalClient is the project side for push and pull.
	LocalClient string
	// SourceClient is mirrored in source mode.
	SourceClient string
}

// Validate checks that the options fit together.
func (o Options) Validate() error {
	switch o.Direction {
	case "", DirectionSync:
	case DirectionPush, DirectionPull:
		if o.LocalClient == "" {
			return fmt.Errorf("%w: %s requires a local client", ErrInvalidOptions, o.Direction)
		}
	case DirectionSource:
		if o.SourceClient == "" {
			return fmt.Errorf("%w: source mode requires a source client", ErrInvalidOptions)
		}
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidOptions, o.Direction)
	}
	return nil
}

// SourceAllowed reports whether an asset owned by client may feed the desired set.
func (o Options) SourceAllowed(client string) bool {
	switch o.Direction {
	case DirectionPush:
		return client == o.LocalClient
	case DirectionPull:
		return client != o.LocalClient
	case DirectionSource:
		return client == o.SourceClient
	default:
		return true
	}
}

// TargetAllowed reports whether client may receive writes.
func (o Options) TargetAllowed(client string) bool {
	switch o.Direction {
	case DirectionPush:
		return client != o.LocalClient
	case DirectionPull:
		return client == o.LocalClient
	default:
		return true
	}
}

// Relevant returns the assets that may feed the desired set, keeping their order.
// Conflict detection runs on this subset.
func (o Options) Relevant(list []*assets.Asset) []*assets.Asset {
	out := make([]*assets.Asset, 0, len(list))
	for _, a := range list {
		if o.SourceAllowed(a.Client) {
			out = append(out, a)
		}
	}
	return out
}
