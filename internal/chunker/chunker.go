// Package chunker splits document text into bounded, overlapping chunks.
//
// The splitter tries a prioritized list of separators (paragraph break,
// line break, sentence end, word boundary, character) so that chunk
// boundaries fall on semantic boundaries where possible, while
// guaranteeing that no chunk exceeds the configured size.
package chunker

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/resumind/ragserver/internal/core/domain"
)

// DefaultChunkSize is the default number of bytes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping bytes.
// Roughly 20% of the chunk size: enough trailing context to survive a
// chunk boundary without excessive duplication.
const DefaultChunkOverlap = 200

// defaultSeparators in priority order. The empty string is the final
// fallback and cuts on character boundaries.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits text into chunks of at most chunkSize bytes, with
// chunkOverlap bytes of trailing context from the previous chunk
// prepended to each following chunk. A Splitter holds no per-document
// state and is safe for concurrent use.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// New creates a Splitter. The overlap must be non-negative and strictly
// smaller than the chunk size.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunkConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", domain.ErrInvalidChunkConfig, overlap, chunkSize)
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// ChunkSize returns the configured maximum chunk size.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split returns all chunks for text. Empty input yields no chunks.
func (s *Splitter) Split(text string) []domain.Chunk {
	var chunks []domain.Chunk
	for c := range s.Seq(text) {
		chunks = append(chunks, c)
	}
	return chunks
}

// Seq returns a lazy, restartable sequence of chunks for text.
// Each iteration re-derives the chunks; nothing is retained between
// documents.
func (s *Splitter) Seq(text string) iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		pieces := s.pieces(text, 0, s.separators)

		i := 0
		first := true
		for i < len(pieces) {
			start := pieces[i].start
			end := pieces[i].end

			// Overlap prefix from the previous chunk's content. Shrunk
			// when a single piece leaves no room within chunkSize, and
			// clipped to the available preceding text.
			prefix := 0
			if !first {
				prefix = s.overlap
				if end-start+prefix > s.chunkSize {
					prefix = s.chunkSize - (end - start)
				}
				if prefix < 0 {
					prefix = 0
				}
				if prefix > start {
					prefix = start
				}
			}

			// Merge adjacent pieces while the chunk stays within bounds.
			j := i + 1
			for j < len(pieces) && pieces[j].end-start+prefix <= s.chunkSize {
				end = pieces[j].end
				j++
			}

			chunk := domain.Chunk{
				Text:        text[start-prefix : end],
				StartOffset: start - prefix,
				EndOffset:   end,
			}
			if !yield(chunk) {
				return
			}
			first = false
			i = j
		}
	}
}

// piece is a contiguous region of the source text. Pieces partition the
// text exactly; overlap is only introduced when pieces are merged.
type piece struct {
	start int
	end   int
}

// pieces recursively splits text into regions of at most chunkSize
// bytes, preferring the highest-priority separator that applies.
func (s *Splitter) pieces(text string, offset int, separators []string) []piece {
	if len(text) == 0 {
		return nil
	}
	if len(text) <= s.chunkSize {
		return []piece{{start: offset, end: offset + len(text)}}
	}

	sep := separators[0]
	if sep == "" {
		return s.hardCut(text, offset)
	}

	var out []piece
	start := 0
	for start < len(text) {
		idx := strings.Index(text[start:], sep)
		var end int
		if idx < 0 {
			end = len(text)
		} else {
			// Keep the separator attached to the preceding piece so the
			// pieces still concatenate to the original text.
			end = start + idx + len(sep)
		}
		part := text[start:end]
		if len(part) <= s.chunkSize {
			out = append(out, piece{start: offset + start, end: offset + end})
		} else {
			out = append(out, s.pieces(part, offset+start, separators[1:])...)
		}
		start = end
	}
	return out
}

// hardCut slices text on rune boundaries into pieces that merge back
// into full-sized chunks once the overlap prefix is added.
func (s *Splitter) hardCut(text string, offset int) []piece {
	width := s.chunkSize - s.overlap

	var out []piece
	start := 0
	for i, r := range text {
		if i == start {
			continue
		}
		if i+utf8.RuneLen(r)-start > width {
			out = append(out, piece{start: offset + start, end: offset + i})
			start = i
		}
	}
	out = append(out, piece{start: offset + start, end: offset + len(text)})
	return out
}
