/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

// Trace keeps the most recently executed instructions for diagnostics.
type Trace struct {
	// buf contains each traced line, used as a ring.
	buf []string

	// next is the write position within buf.
	next int

	// full is true once buf has wrapped.
	full bool
}

// NewTrace creates a Trace holding up to n lines.
func NewTrace(n int) *Trace {
	if n < 1 {
		n = 1
	}

	return &Trace{
		buf: make([]string, n),
	}
}

// Add appends a line, discarding the oldest one when full.
func (t *Trace) Add(line string) {
	t.buf[t.next] = line
	t.next++

	if t.next == len(t.buf) {
		t.next = 0
		t.full = true
	}
}

// Len returns the number of lines held.
func (t *Trace) Len() int {
	if t.full {
		return len(t.buf)
	}
	return t.next
}

// Lines returns every held line, oldest first.
func (t *Trace) Lines() []string {
	if !t.full {
		return append([]string(nil), t.buf[:t.next]...)
	}

	lines := make([]string, 0, len(t.buf))
	lines = append(lines, t.buf[t.next:]...)

	return append(lines, t.buf[:t.next]...)
}

// Window returns the last n lines, oldest first.
func (t *Trace) Window(n int) []string {
	lines := t.Lines()

	// don't scroll past the beginning
	if n >= len(lines) {
		return lines
	}

	return lines[len(lines)-n:]
}

// Clear drops every line.
func (t *Trace) Clear() {
	for i := range t.buf {
		t.buf[i] = ""
	}

	t.next = 0
	t.full = false
}
