package admin

import (
	"math"
	"sync"
	"time"
)

// ProgressFunc receives the overall upload percentage, 0 to 100
type ProgressFunc func(percent int)

// batchProgress folds per-file byte counts into one percentage: the mean of
// the per-file fractions, rounded. Each file's fraction only grows.
type batchProgress struct {
	mu        sync.Mutex
	fractions []float64
	report    ProgressFunc
}

func newBatchProgress(files int, report ProgressFunc) *batchProgress {
	return &batchProgress{fractions: make([]float64, files), report: report}
}

func (p *batchProgress) update(i int, sent, total int64) {
	if total <= 0 {
		return
	}
	frac := float64(sent) / float64(total)
	p.set(i, frac)
}

func (p *batchProgress) complete(i int) {
	p.set(i, 1)
}

func (p *batchProgress) set(i int, frac float64) {
	if frac > 1 {
		frac = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if frac > p.fractions[i] {
		p.fractions[i] = frac
	}
	if p.report != nil {
		p.report(p.percentLocked())
	}
}

func (p *batchProgress) percentLocked() int {
	if len(p.fractions) == 0 {
		return 100
	}
	var sum float64
	for _, f := range p.fractions {
		sum += f
	}
	return int(math.Round(sum / float64(len(p.fractions)) * 100))
}

// Upload states reported by ProgressTracker
const (
	UploadStatusUploading = "uploading"
	UploadStatusDone      = "done"
	UploadStatusFailed    = "failed"
)

// UploadProgress is a snapshot of one tracked upload
type UploadProgress struct {
	ID      string `json:"id"`
	Percent int    `json:"percent"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type trackedUpload struct {
	UploadProgress
	touched time.Time
}

// ProgressTracker remembers upload progress by client supplied id so the
// percentage can be polled while the upload request is still running.
// Entries are dropped once they have not changed for ttl.
type ProgressTracker struct {
	mu      sync.Mutex
	entries map[string]*trackedUpload
	ttl     time.Duration
	now     func() time.Time
}

// NewProgressTracker creates a tracker whose entries expire after ttl
func NewProgressTracker(ttl time.Duration) *ProgressTracker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProgressTracker{
		entries: make(map[string]*trackedUpload),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Start registers id at 0%
func (t *ProgressTracker) Start(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	t.entries[id] = &trackedUpload{
		UploadProgress: UploadProgress{ID: id, Status: UploadStatusUploading},
		touched:        t.now(),
	}
}

// Reporter returns a ProgressFunc that updates id
func (t *ProgressTracker) Reporter(id string) ProgressFunc {
	return func(percent int) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if e, ok := t.entries[id]; ok && e.Status == UploadStatusUploading && percent >= e.Percent {
			e.Percent = percent
			e.touched = t.now()
		}
	}
}

// Finish marks id done, or failed when err is non-nil
func (t *ProgressTracker) Finish(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return
	}
	e.touched = t.now()
	if err != nil {
		e.Status = UploadStatusFailed
		e.Error = err.Error()
		return
	}
	e.Status = UploadStatusDone
	e.Percent = 100
}

// Get returns the progress of id
func (t *ProgressTracker) Get(id string) (UploadProgress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	e, ok := t.entries[id]
	if !ok {
		return UploadProgress{}, false
	}
	return e.UploadProgress, true
}

// Len returns the number of live entries
func (t *ProgressTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweepLocked()
	return len(t.entries)
}

func (t *ProgressTracker) sweepLocked() {
	cutoff := t.now().Add(-t.ttl)
	for id, e := range t.entries {
		if e.touched.Before(cutoff) {
			delete(t.entries, id)
		}
	}
}
