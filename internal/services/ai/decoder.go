package ai

import (
	"bytes"
	"encoding/json"
)

// FragmentDecoder turns an arbitrarily chunked newline-delimited JSON stream
// into fragments. Feed may be called with any split of the input; a trailing
// line without its newline is held until the next Feed or Flush.
type FragmentDecoder struct {
	buf         []byte
	onMalformed func(line string, err error)
}

// NewFragmentDecoder creates a decoder. onMalformed, when non-nil, is called
// for every non-blank line that is not a valid fragment.
func NewFragmentDecoder(onMalformed func(line string, err error)) *FragmentDecoder {
	return &FragmentDecoder{onMalformed: onMalformed}
}

// Feed consumes p and returns the fragments completed by it.
func (d *FragmentDecoder) Feed(p []byte) []Fragment {
	d.buf = append(d.buf, p...)

	var out []Fragment
	start := 0
	for {
		i := bytes.IndexByte(d.buf[start:], '\n')
		if i < 0 {
			break
		}
		if f, ok := d.parseLine(d.buf[start : start+i]); ok {
			out = append(out, f)
		}
		start += i + 1
	}
	d.buf = d.buf[:copy(d.buf, d.buf[start:])]
	return out
}

// Flush parses whatever is left in the buffer as a final line.
func (d *FragmentDecoder) Flush() []Fragment {
	line := d.buf
	d.buf = nil
	if f, ok := d.parseLine(line); ok {
		return []Fragment{f}
	}
	return nil
}

// Buffered reports how many bytes are waiting for a newline.
func (d *FragmentDecoder) Buffered() int {
	return len(d.buf)
}

func (d *FragmentDecoder) parseLine(line []byte) (Fragment, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Fragment{}, false
	}
	var f Fragment
	if err := json.Unmarshal(line, &f); err != nil {
		if d.onMalformed != nil {
			d.onMalformed(string(line), err)
		}
		return Fragment{}, false
	}
	return f, true
}
