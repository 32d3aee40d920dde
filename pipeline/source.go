// Package pipeline runs the bounded concurrent generation pipeline: a work
// source enumerates items, a producer pool builds file content in parallel,
// and a single consumer writes archive entries in a fixed per-item order
// before the load files are serialized from the collected rows.
package pipeline

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/haybale/chaff/distrib"
	"github.com/haybale/chaff/types"
)

// WorkSource enumerates work items in index order. Next is safe for
// concurrent use by multiple producers; each item is handed out exactly
// once.
type WorkSource struct {
	mu   sync.Mutex
	next int64
	req  *types.GenerationRequest
	ext  string
	rng  *rand.Rand
}

// NewWorkSource returns a source over the request's index space. When the
// request carries a chaos seed, folder assignment draws from a source
// seeded with it so the whole run is reproducible.
func NewWorkSource(req *types.GenerationRequest) *WorkSource {
	var rng *rand.Rand
	if req.Chaos != nil && req.Chaos.Seed != nil {
		rng = rand.New(rand.NewSource(*req.Chaos.Seed))
	}
	return &WorkSource{req: req, ext: req.FileType.Extension(), rng: rng}
}

// Next returns the next work item, or ok=false when the index space is
// exhausted.
func (s *WorkSource) Next() (types.WorkItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next >= s.req.FileCount {
		return types.WorkItem{}, false, nil
	}
	s.next++
	index := s.next

	folder, err := distrib.FolderNumber(index, s.req.FileCount, s.req.FolderCount, s.req.Distribution, s.rng)
	if err != nil {
		return types.WorkItem{}, false, fmt.Errorf("assign folder for index %d: %w", index, err)
	}

	folderName := fmt.Sprintf("folder_%03d", folder)
	fileName := fmt.Sprintf("%08d%s", index, s.ext)
	return types.WorkItem{
		Index:        index,
		FolderNumber: folder,
		FolderName:   folderName,
		FileName:     fileName,
		ArchivePath:  folderName + "/" + fileName,
	}, true, nil
}
