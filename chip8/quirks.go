package chip8

// Quirks select between the behaviours that differ across historical
// CHIP-8 interpreters. The zero value writes VF last, shifts Vx, leaves I
// alone in Fx55/Fx65 and wraps sprites around the display edges.
type Quirks struct {
	// FlagFirst writes VF before the result of 8xy4, 8xy5, 8xy6, 8xy7
	// and 8xyE. When x is F the arithmetic result then survives instead
	// of the flag.
	FlagFirst bool

	// ShiftVy makes 8xy6 and 8xyE shift Vy and store the result in Vx.
	ShiftVy bool

	// LoadStoreIncrementsI leaves I pointing past the last register
	// stored or loaded by Fx55 and Fx65.
	LoadStoreIncrementsI bool

	// LogicResetsVF clears VF after 8xy1, 8xy2 and 8xy3.
	LogicResetsVF bool

	// ClipSprites discards sprite pixels that cross the display edge
	// instead of wrapping them. The sprite origin always wraps.
	ClipSprites bool
}
