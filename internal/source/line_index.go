package source

import (
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"
)

// LineIndex maps byte offsets to 1-based line numbers. It stores a flat
// sequence of [start, end) pairs, one per line; end includes the terminator
// except on a final line that has none.
type LineIndex struct {
	bounds []uint32
}

// NewLineIndex builds the index for contents. It never fails for text that
// fits in 4 GiB and panics otherwise.
func NewLineIndex(contents string) *LineIndex {
	n := strings.Count(contents, "\n") + 1
	bounds := make([]uint32, 0, 2*n)
	var off uint32
	for line := range strings.SplitSeq(contents, "\n") {
		width, err := safecast.Conv[uint32](len(line) + 1)
		if err != nil {
			panic(fmt.Errorf("line width overflow: %w", err))
		}
		bounds = append(bounds, off, off+width)
		off += width
	}
	// нет завершающего \n - последняя строка на один байт короче
	if !strings.HasSuffix(contents, "\n") {
		bounds[len(bounds)-1]--
	}
	return &LineIndex{bounds: bounds}
}

// Lines returns the number of lines, counting an empty line after a trailing
// terminator.
func (x *LineIndex) Lines() int { return len(x.bounds) / 2 }

// End returns the largest offset Line accepts.
func (x *LineIndex) End() int { return int(x.bounds[len(x.bounds)-1]) }

// Line returns the 1-based line containing offset. An offset equal to the end
// of the text belongs to the last line. Offsets outside [0, End()] are a
// programming error and panic.
func (x *LineIndex) Line(offset int) int {
	if offset < 0 {
		panic(fmt.Sprintf("source: negative offset %d", offset))
	}
	off, err := safecast.Conv[uint32](offset)
	if err != nil || off > x.bounds[len(x.bounds)-1] {
		panic(fmt.Sprintf("source: offset %d beyond end %d", offset, x.End()))
	}
	// первый индекс с границей строго больше off
	idx := sort.Search(len(x.bounds), func(i int) bool { return x.bounds[i] > off })
	return min(idx/2+1, x.Lines())
}

// Span returns the [start, end) byte range of a 1-based line.
func (x *LineIndex) Span(line int) (start, end int, ok bool) {
	if line < 1 || line > x.Lines() {
		return 0, 0, false
	}
	return int(x.bounds[2*line-2]), int(x.bounds[2*line-1]), true
}
