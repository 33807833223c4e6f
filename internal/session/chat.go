package session

import (
	"strconv"
	"time"
)

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RangeKey identifies the transcript of a contiguous page range. A single
// page keeps its plain index as key; longer ranges use "first-last".
type RangeKey struct {
	First, Last int // 0-based, inclusive
}

// Single reports whether the key names one page.
func (k RangeKey) Single() bool {
	return k.First == k.Last
}

func (k RangeKey) String() string {
	if k.Single() {
		return strconv.Itoa(k.First)
	}
	return strconv.Itoa(k.First) + "-" + strconv.Itoa(k.Last)
}

// MarshalText lets a RangeKey serve as a JSON map key.
func (k RangeKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ResolveRange converts a 1-based inclusive range to 0-based indices and
// the transcript key for the range.
func ResolveRange(start, end, total int) ([]int, RangeKey, error) {
	if start < 1 || start > total || end < 1 || end > total || start > end {
		return nil, RangeKey{}, &InvalidRangeError{Start: start, End: end, Total: total}
	}
	indices := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		indices = append(indices, p-1)
	}
	return indices, RangeKey{First: start - 1, Last: end - 1}, nil
}

// Turn is one chat message.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Transcripts maps page ranges to chat transcripts. Overlapping ranges are
// distinct transcripts.
type Transcripts struct {
	byKey map[RangeKey][]Turn
}

// NewTranscripts returns an empty set.
func NewTranscripts() *Transcripts {
	return &Transcripts{byKey: make(map[RangeKey][]Turn)}
}

// Get returns a copy of the transcript for key, creating it on first use.
func (t *Transcripts) Get(key RangeKey) []Turn {
	turns, ok := t.byKey[key]
	if !ok {
		t.byKey[key] = []Turn{}
		return []Turn{}
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Append adds a turn to the transcript for key.
func (t *Transcripts) Append(key RangeKey, role, content string) Turn {
	turn := Turn{Role: role, Content: content, At: time.Now()}
	t.byKey[key] = append(t.byKey[key], turn)
	return turn
}

// Clear empties the transcript for key and leaves the others alone.
func (t *Transcripts) Clear(key RangeKey) {
	t.byKey[key] = []Turn{}
}

// Len returns the number of known transcripts.
func (t *Transcripts) Len() int {
	return len(t.byKey)
}
