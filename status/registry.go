package status

import "sync/atomic"

// Metric keys written by the engine
const (
	KeyRays            = "march.rays"
	KeyPortalCrossings = "march.portal_crossings"
	KeyFourD           = "march.fourd_transitions"
	KeyLoops           = "march.loops"
	KeySwitches        = "march.context_switches"
	KeyMaxDistance     = "march.max_distance"

	KeyTicks         = "sim.ticks"
	KeyRegenerations = "sim.regenerations"
	KeyFrames        = "render.frames"
	KeyFrameMillis   = "render.frame_ms"
	KeyReality       = "traveler.reality"
	KeyContext       = "traveler.context"
	KeyWorldVersion  = "world.version"
	KeyClients       = "serve.clients"
	KeyDroppedFrames = "serve.dropped_frames"
)

// Registry groups metrics by value type
// Writers cache pointers at setup; hot loops touch only the atomics
type Registry struct {
	Ints    *MetricMap[atomic.Int64]
	Floats  *MetricMap[AtomicFloat]
	Strings *MetricMap[AtomicString]
}

func NewRegistry() *Registry {
	return &Registry{
		Ints:    NewMetricMap[atomic.Int64](),
		Floats:  NewMetricMap[AtomicFloat](),
		Strings: NewMetricMap[AtomicString](),
	}
}

func (r *Registry) TotalCount() int {
	return r.Ints.Count() + r.Floats.Count() + r.Strings.Count()
}

// Snapshot copies every metric into a plain map for display or encoding
func (r *Registry) Snapshot() map[string]any {
	return r.SnapshotSection("")
}

// SnapshotSection copies the metrics of one key section, such as "march"
func (r *Registry) SnapshotSection(section string) map[string]any {
	out := make(map[string]any)
	r.Ints.RangeSection(section, func(k string, v *atomic.Int64) { out[k] = v.Load() })
	r.Floats.RangeSection(section, func(k string, v *AtomicFloat) { out[k] = v.Get() })
	r.Strings.RangeSection(section, func(k string, v *AtomicString) { out[k] = v.Load() })
	return out
}
