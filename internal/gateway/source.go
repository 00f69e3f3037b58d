package gateway

import (
	"context"
	"log"
	"sync"

	"github.com/rashmiranjanaiet/ai-web/internal/live"
	"github.com/rashmiranjanaiet/ai-web/internal/pcm"
)

// blockSource feeds capture blocks pushed by the browser leg into the live
// session. The browser owns the real microphone; Open has nothing to acquire.
type blockSource struct {
	blocks chan []float32
	mu     sync.Mutex
	closed bool
}

var _ live.Source = (*blockSource)(nil)

func newBlockSource() *blockSource {
	return &blockSource{blocks: make(chan []float32, 8)}
}

func (s *blockSource) Open(ctx context.Context) error { return nil }

func (s *blockSource) Blocks() <-chan []float32 { return s.blocks }

func (s *blockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.blocks)
	}
	return nil
}

// Push hands one capture block to the session. Blocks are dropped when the
// capture pipeline is behind so a stalled session cannot back up the reader.
func (s *blockSource) Push(block []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.blocks <- block:
	default:
		log.Printf("gateway: capture queue full, dropping block")
	}
}

// pushBlocks folds decoded mic samples into fixed-size capture blocks,
// pushing every full block to the source and returning the remainder.
func pushBlocks(src *blockSource, pending []float32, samples []float32) []float32 {
	pending = append(pending, samples...)
	for len(pending) >= pcm.BlockSamples {
		block := make([]float32, pcm.BlockSamples)
		copy(block, pending[:pcm.BlockSamples])
		src.Push(block)
		copy(pending, pending[pcm.BlockSamples:])
		pending = pending[:len(pending)-pcm.BlockSamples]
	}
	return pending
}
