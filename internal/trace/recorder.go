// Package trace records the ICoCo calls made on guarded problems and
// renders them as a stable text log.
package trace

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/san-kum/cosim/internal/icoco"
)

// Recorder is an icoco.Observer keeping every call in order.
type Recorder struct {
	mu    sync.Mutex
	calls []icoco.Call
}

var _ icoco.Observer = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) OnCall(c icoco.Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *Recorder) Calls() []icoco.Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]icoco.Call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Counts tallies calls per method.
func (r *Recorder) Counts() map[string]int {
	counts := make(map[string]int)
	for _, c := range r.Calls() {
		counts[c.Method]++
	}
	return counts
}

// Text renders one line per call:
//
//	problem.method state=READY t=0.5 err=WrongContext
func (r *Recorder) Text() string {
	var b strings.Builder
	for _, c := range r.Calls() {
		b.WriteString(Line(c))
		b.WriteByte('\n')
	}
	return b.String()
}

func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.Text())
	return int64(n), err
}

func Line(c icoco.Call) string {
	line := fmt.Sprintf("%s.%s state=%s t=%s", c.Problem, c.Method, c.State, strconv.FormatFloat(c.Time, 'g', -1, 64))
	if c.Err != nil {
		line += " err=" + errorKind(c.Err)
	}
	return line
}

func errorKind(err error) string {
	switch {
	case icoco.IsWrongContext(err):
		return "WrongContext"
	case icoco.IsWrongArgument(err):
		return "WrongArgument"
	case icoco.IsNotImplemented(err):
		return "NotImplemented"
	default:
		return "error"
	}
}
