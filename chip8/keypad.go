package chip8

// KeyState is a snapshot of the 16 hex keys; true means held down.
type KeyState [16]bool

// Mask packs the state into a bit set, key n at bit n.
func (s KeyState) Mask() uint16 {
	m := uint16(0)
	for k, down := range s {
		if down {
			m |= 1 << uint(k)
		}
	}
	return m
}

// Keypad is the key state seen by the CPU. It is written by the input
// collaborator between steps and only read by instructions.
type Keypad struct {
	keys KeyState
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.keys = KeyState{}
}

// Press marks key as held down. Keys above 0xF are ignored.
func (k *Keypad) Press(key uint) {
	if key < 16 {
		k.keys[key] = true
	}
}

// Release marks key as up. Keys above 0xF are ignored.
func (k *Keypad) Release(key uint) {
	if key < 16 {
		k.keys[key] = false
	}
}

// Set replaces the whole key state.
func (k *Keypad) Set(s KeyState) {
	k.keys = s
}

// State returns a copy of the key state.
func (k *Keypad) State() KeyState {
	return k.keys
}

// Pressed reports whether key (taken mod 16) is held down.
func (k *Keypad) Pressed(key byte) bool {
	return k.keys[key&0xF]
}

// KeyFeed is an Input that receives key state snapshots over a channel.
// Any goroutine may send; the scheduler drains the channel when it
// samples input and keeps only the latest snapshot.
type KeyFeed struct {
	c chan KeyState
}

// NewKeyFeed returns a feed buffering up to n snapshots.
func NewKeyFeed(n int) *KeyFeed {
	if n < 1 {
		n = 1
	}
	return &KeyFeed{c: make(chan KeyState, n)}
}

// C is the channel producers send snapshots on.
func (f *KeyFeed) C() chan<- KeyState {
	return f.c
}

// Send delivers a snapshot, dropping the oldest queued snapshot if the
// buffer is full. Send never blocks.
func (f *KeyFeed) Send(s KeyState) {
	for {
		select {
		case f.c <- s:
			return
		default:
		}

		// make room
		select {
		case <-f.c:
		default:
		}
	}
}

// Sample returns the most recent snapshot sent since the last call, or
// false if nothing new arrived.
func (f *KeyFeed) Sample() (KeyState, bool) {
	var (
		s  KeyState
		ok bool
	)

	for {
		select {
		case s = <-f.c:
			ok = true
		default:
			return s, ok
		}
	}
}
