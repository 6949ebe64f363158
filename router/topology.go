package router

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/pwa-iframe/edgeshim/edge"
)

var (
	ErrInvalidTopology     = errors.New("invalid topology")
	ErrUnknownDistribution = errors.New("unknown distribution")
)

// OriginKind is the kind of backend a distribution fetches from.
type OriginKind string

const (
	// OriginBucket is a storage bucket declared by the topology.
	OriginBucket OriginKind = "bucket"

	// OriginHTTP is an arbitrary HTTPS endpoint.
	OriginHTTP OriginKind = "http"

	// OriginDistribution is the domain of another distribution.
	OriginDistribution OriginKind = "distribution"
)

// Origin is the single origin of a distribution. Name refers to the bucket
// or distribution for the bucket and distribution kinds; Domain is used
// for the http kind.
type Origin struct {
	Kind   OriginKind `json:"kind"`
	Name   string     `json:"name,omitempty"`
	Domain string     `json:"domain,omitempty"`
	Path   string     `json:"path,omitempty"`
}

// Association binds functions to a lifecycle stage. Functions run in
// declared order.
type Association struct {
	Stage     edge.Stage `json:"stage"`
	Functions []string   `json:"functions"`
}

type Distribution struct {
	Name              string        `json:"name"`
	Origin            Origin        `json:"origin"`
	DefaultRootObject string        `json:"defaultRootObject,omitempty"`
	Associations      []Association `json:"associations,omitempty"`

	// PageProperty is the content generator property that receives the
	// domain of this distribution. Empty when the page does not embed it.
	PageProperty string `json:"pageProperty,omitempty"`
}

// Functions returns the functions associated with the given stage.
func (d Distribution) Functions(stage edge.Stage) []string {
	for _, a := range d.Associations {
		if a.Stage == stage {
			return a.Functions
		}
	}
	return nil
}

type Topology struct {
	Distributions []Distribution `json:"distributions"`

	// PageBucket is the bucket the content generator writes to.
	PageBucket string `json:"pageBucket,omitempty"`
}

// Distribution returns the named distribution.
func (t Topology) Distribution(name string) (Distribution, bool) {
	return lo.Find(t.Distributions, func(d Distribution) bool {
		return d.Name == name
	})
}

// Buckets returns the names of all buckets referenced by the topology,
// in order of first reference.
func (t Topology) Buckets() []string {
	var buckets []string
	for _, d := range t.Distributions {
		if d.Origin.Kind == OriginBucket {
			buckets = append(buckets, d.Origin.Name)
		}
	}
	if t.PageBucket != "" {
		buckets = append(buckets, t.PageBucket)
	}
	return lo.Uniq(buckets)
}

// FunctionNames returns every function referenced by the topology.
func (t Topology) FunctionNames() []string {
	var names []string
	for _, d := range t.Distributions {
		for _, a := range d.Associations {
			names = append(names, a.Functions...)
		}
	}
	return lo.Uniq(names)
}

// Validate checks the structural invariants of the topology.
func (t Topology) Validate() error {
	seen := make(map[string]struct{}, len(t.Distributions))

	for _, d := range t.Distributions {
		if d.Name == "" {
			return fmt.Errorf("%w: distribution without name", ErrInvalidTopology)
		}
		if _, ok := seen[d.Name]; ok {
			return fmt.Errorf("%w: duplicate distribution %q", ErrInvalidTopology, d.Name)
		}
		seen[d.Name] = struct{}{}
	}

	for _, d := range t.Distributions {
		if err := t.validateOrigin(d); err != nil {
			return err
		}

		stages := make(map[edge.Stage]struct{}, len(d.Associations))
		for _, a := range d.Associations {
			if _, err := edge.ParseStage(string(a.Stage)); err != nil {
				return fmt.Errorf("%w: distribution %q: %w", ErrInvalidTopology, d.Name, err)
			}
			if _, ok := stages[a.Stage]; ok {
				return fmt.Errorf("%w: distribution %q: stage %s declared twice", ErrInvalidTopology, d.Name, a.Stage)
			}
			if len(a.Functions) == 0 {
				return fmt.Errorf("%w: distribution %q: stage %s has no functions", ErrInvalidTopology, d.Name, a.Stage)
			}
			stages[a.Stage] = struct{}{}
		}
	}

	return nil
}

func (t Topology) validateOrigin(d Distribution) error {
	switch d.Origin.Kind {
	case OriginBucket:
		if d.Origin.Name == "" {
			return fmt.Errorf("%w: distribution %q: bucket origin without name", ErrInvalidTopology, d.Name)
		}
	case OriginHTTP:
		if d.Origin.Domain == "" {
			return fmt.Errorf("%w: distribution %q: http origin without domain", ErrInvalidTopology, d.Name)
		}
	case OriginDistribution:
		if d.Origin.Name == d.Name {
			return fmt.Errorf("%w: distribution %q is its own origin", ErrInvalidTopology, d.Name)
		}
		if _, ok := t.Distribution(d.Origin.Name); !ok {
			return fmt.Errorf("%w: distribution %q: origin %w %q", ErrInvalidTopology, d.Name, ErrUnknownDistribution, d.Origin.Name)
		}
		if t.originCycle(d) {
			return fmt.Errorf("%w: distribution %q: origin cycle", ErrInvalidTopology, d.Name)
		}
	default:
		return fmt.Errorf("%w: distribution %q: unknown origin kind %q", ErrInvalidTopology, d.Name, d.Origin.Kind)
	}

	return nil
}

// originCycle reports whether following distribution origins from d leads
// back to a distribution already visited.
func (t Topology) originCycle(d Distribution) bool {
	visited := map[string]struct{}{d.Name: {}}

	for d.Origin.Kind == OriginDistribution {
		next, ok := t.Distribution(d.Origin.Name)
		if !ok {
			return false
		}
		if _, ok := visited[next.Name]; ok {
			return true
		}
		visited[next.Name] = struct{}{}
		d = next
	}

	return false
}
