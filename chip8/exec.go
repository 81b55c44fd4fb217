package chip8

// execute dispatches a decoded instruction. PC already points at the
// next instruction.
func (vm *VM) execute(inst Instruction) error {
	x, y := inst.X, inst.Y

	switch inst.Op {
	case OpSYS:
		vm.sys(inst.NNN)
	case OpCLS:
		vm.cls()
	case OpRET:
		return vm.ret()
	case OpJP:
		vm.jump(inst.NNN)
	case OpCALL:
		return vm.call(inst.NNN)
	case OpSEByte:
		vm.skipIf(vm.V[x] == inst.KK)
	case OpSNEByte:
		vm.skipIf(vm.V[x] != inst.KK)
	case OpSEReg:
		vm.skipIf(vm.V[x] == vm.V[y])
	case OpSNEReg:
		vm.skipIf(vm.V[x] != vm.V[y])
	case OpLDByte:
		vm.V[x] = inst.KK
	case OpADDByte:
		vm.V[x] += inst.KK
	case OpLDReg:
		vm.V[x] = vm.V[y]
	case OpOR:
		vm.logic(x, vm.V[x]|vm.V[y])
	case OpAND:
		vm.logic(x, vm.V[x]&vm.V[y])
	case OpXOR:
		vm.logic(x, vm.V[x]^vm.V[y])
	case OpADDReg:
		vm.addXY(x, y)
	case OpSUB:
		vm.subXY(x, y)
	case OpSUBN:
		vm.subYX(x, y)
	case OpSHR:
		vm.shr(x, y)
	case OpSHL:
		vm.shl(x, y)
	case OpLDI:
		vm.I = inst.NNN
	case OpJPV0:
		vm.jump(inst.NNN + uint16(vm.V[0]))
	case OpRND:
		vm.V[x] = byte(vm.rand.Uint32()) & inst.KK
	case OpDRW:
		return vm.drw(x, y, inst.N)
	case OpSKP:
		vm.skipIf(vm.Keys.Pressed(vm.V[x]))
	case OpSKNP:
		vm.skipIf(!vm.Keys.Pressed(vm.V[x]))
	case OpLDVxDT:
		vm.V[x] = vm.Timers.Delay
	case OpLDVxK:
		vm.loadXK(x)
	case OpLDDTVx:
		vm.Timers.Delay = vm.V[x]
	case OpLDSTVx:
		vm.Timers.Sound = vm.V[x]
	case OpADDI:
		vm.I += uint16(vm.V[x])
	case OpLDF:
		vm.I = FontAddress(vm.V[x])
	case OpLDB:
		return vm.loadB(x)
	case OpLDIVx:
		return vm.saveRegs(x)
	case OpLDVxI:
		return vm.loadRegs(x)
	default:
		return ErrUnknownOpcode
	}

	return nil
}

// sys would call an RCA 1802 routine. Modern interpreters ignore it.
func (vm *VM) sys(_ uint16) {}

// cls clears the display.
func (vm *VM) cls() {
	vm.Display.Clear()
}

// ret returns from a subroutine.
func (vm *VM) ret() error {
	addr, err := vm.Stack.Pop()
	if err != nil {
		return err
	}

	vm.PC = addr

	return nil
}

// jump to address.
func (vm *VM) jump(address uint16) {
	vm.PC = address
}

// call a subroutine at address, saving the address of the next
// instruction.
func (vm *VM) call(address uint16) error {
	if err := vm.Stack.Push(vm.PC); err != nil {
		return err
	}

	vm.PC = address

	return nil
}

// skipIf skips the next instruction when cond holds.
func (vm *VM) skipIf(cond bool) {
	if cond {
		vm.PC += 2
	}
}

// setWithFlag stores an arithmetic result and VF in the configured order.
func (vm *VM) setWithFlag(x uint8, result, flag byte) {
	if vm.Quirks.FlagFirst {
		vm.V[0xF] = flag
		vm.V[x] = result
		return
	}

	vm.V[x] = result
	vm.V[0xF] = flag
}

// logic stores the result of OR, AND or XOR.
func (vm *VM) logic(x uint8, result byte) {
	vm.V[x] = result

	if vm.Quirks.LogicResetsVF {
		vm.V[0xF] = 0
	}
}

// add vy to vx, VF is the carry.
func (vm *VM) addXY(x, y uint8) {
	sum := uint16(vm.V[x]) + uint16(vm.V[y])
	vm.setWithFlag(x, byte(sum), flag(sum > 0xFF))
}

// subtract vy from vx, VF is set when there is no borrow.
func (vm *VM) subXY(x, y uint8) {
	vx, vy := vm.V[x], vm.V[y]
	vm.setWithFlag(x, vx-vy, flag(vx >= vy))
}

// subtract vx from vy into vx, VF is set when there is no borrow.
func (vm *VM) subYX(x, y uint8) {
	vx, vy := vm.V[x], vm.V[y]
	vm.setWithFlag(x, vy-vx, flag(vy >= vx))
}

// shr shifts right 1 bit, VF is the bit shifted out.
func (vm *VM) shr(x, y uint8) {
	v := vm.shiftSource(x, y)
	vm.setWithFlag(x, v>>1, v&1)
}

// shl shifts left 1 bit, VF is the bit shifted out.
func (vm *VM) shl(x, y uint8) {
	v := vm.shiftSource(x, y)
	vm.setWithFlag(x, v<<1, v>>7)
}

func (vm *VM) shiftSource(x, y uint8) byte {
	if vm.Quirks.ShiftVy {
		return vm.V[y]
	}
	return vm.V[x]
}

// drw draws an n byte sprite at I to the display at vx, vy. VF is set if
// any pixel was turned off.
func (vm *VM) drw(x, y, n uint8) error {
	sprite, err := vm.Memory.Slice(int(vm.I), int(n))
	if err != nil {
		return err
	}

	c := vm.Display.Draw(sprite, int(vm.V[x]), int(vm.V[y]), vm.Quirks.ClipSprites)
	vm.V[0xF] = flag(c)

	return nil
}

// loadXK starts waiting for a key press into vx. PC stays on this
// instruction until the wait completes.
func (vm *VM) loadXK(x uint8) {
	vm.PC -= 2
	vm.Mode = AwaitingKey
	vm.W = x
	vm.held = vm.Keys.State().Mask()
}

// loadB stores the decimal digits of vx at I, I+1 and I+2.
func (vm *VM) loadB(x uint8) error {
	v := vm.V[x]
	digits := [3]byte{v / 100, v / 10 % 10, v % 10}

	for i, d := range digits {
		if err := vm.Memory.WriteByte(int(vm.I)+i, d); err != nil {
			return err
		}
	}

	return nil
}

// saveRegs stores v0..vx at I.
func (vm *VM) saveRegs(x uint8) error {
	for i := 0; i <= int(x); i++ {
		if err := vm.Memory.WriteByte(int(vm.I)+i, vm.V[i]); err != nil {
			return err
		}
	}

	if vm.Quirks.LoadStoreIncrementsI {
		vm.I += uint16(x) + 1
	}

	return nil
}

// loadRegs loads v0..vx from I.
func (vm *VM) loadRegs(x uint8) error {
	for i := 0; i <= int(x); i++ {
		b, err := vm.Memory.ReadByte(int(vm.I) + i)
		if err != nil {
			return err
		}

		vm.V[i] = b
	}

	if vm.Quirks.LoadStoreIncrementsI {
		vm.I += uint16(x) + 1
	}

	return nil
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
