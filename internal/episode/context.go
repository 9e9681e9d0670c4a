package episode

import (
	"sort"
	"sync"

	"podknight/internal/execqueue"
	"podknight/internal/fileutil"
	"podknight/internal/storage"
)

// RunContext is shared by every task of one execution. Its fields are set
// before the tree starts and never change; per-output results go through
// the results recorder.
type RunContext struct {
	Run        *Run
	Upload     bool
	ScratchDir string
	pools      execqueue.Pools
	results    *results
}

// OutputResult is what happened to one planned output.
type OutputResult struct {
	Output   Output
	Digest   fileutil.Digest
	Location storage.Location
	Encoded  bool
	Uploaded bool
}

type results struct {
	mu   sync.Mutex
	byID map[string]*OutputResult
}

func newResults() *results {
	return &results{byID: make(map[string]*OutputResult)}
}

func (r *results) entry(out Output) *OutputResult {
	res, ok := r.byID[out.ID()]
	if !ok {
		res = &OutputResult{Output: out}
		r.byID[out.ID()] = res
	}
	return res
}

func (r *results) encoded(out Output, digest fileutil.Digest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.entry(out)
	res.Digest = digest
	res.Encoded = true
}

func (r *results) uploaded(out Output, loc storage.Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := r.entry(out)
	res.Location = loc
	res.Uploaded = true
}

func (r *results) digest(out Output) (fileutil.Digest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[out.ID()]
	if !ok || !res.Encoded {
		return fileutil.Digest{}, false
	}
	return res.Digest, true
}

// list returns a copy of every recorded result ordered by part then name.
func (r *results) list() []OutputResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]OutputResult, 0, len(r.byID))
	for _, res := range r.byID {
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Output.Part.Index != out[j].Output.Part.Index {
			return out[i].Output.Part.Index < out[j].Output.Part.Index
		}
		return out[i].Output.Name < out[j].Output.Name
	})
	return out
}
