package types

// Task states for one diarization request, as seen by the client.
const (
	StateIdle       = "idle"
	StateProcessing = "processing"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

// Remote status values returned by GET /status/{task_id}.
const (
	RemoteProcessing = "processing"
	RemoteCompleted  = "completed"
	RemoteFailed     = "failed"
)

// Segment represents one speaker-attributed time interval.
// Segments arrive unsorted and may overlap; consumers must not assume either.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Speakers returns the distinct speaker labels in segs, in encounter order.
func Speakers(segs []Segment) []string {
	seen := make(map[string]struct{}, len(segs))
	var out []string
	for _, seg := range segs {
		if _, ok := seen[seg.Speaker]; ok {
			continue
		}
		seen[seg.Speaker] = struct{}{}
		out = append(out, seg.Speaker)
	}
	return out
}
