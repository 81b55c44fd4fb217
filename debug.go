package main

import (
	"fmt"
	"strings"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
)

// helpText lists the keys of the window front end.
var helpText = []string{
	"Virtual keys:",
	"  1-2-3-4",
	"  Q-W-E-R",
	"  A-S-D-F",
	"  Z-X-C-V",
	"",
	"Emulation keys:",
	"  ESC      - Quit",
	"  BS       - Reboot (CTRL to reboot paused)",
	"  H, F1    - Help",
	"  SPACE/F5 - Pause/resume",
	"  F6, F10  - Step",
	"  F8       - Registers",
	"  F9       - Toggle breakpoint",
	"  [ ]      - Slower/faster",
}

// logHelp writes the help text to the log.
func logHelp(logger *log.Logger) {
	for _, line := range helpText {
		logger.Info(line)
	}
}

// logState writes the registers and the next instruction to the log.
func logState(logger *log.Logger, vm *chip8.VM) {
	v := make([]string, len(vm.V))
	for i, b := range vm.V {
		v[i] = fmt.Sprintf("V%X=#%02X", i, b)
	}

	logger.Info(vm.Disassemble(vm.PC),
		log.String("mode", vm.Mode.String()),
		log.String("i", fmt.Sprintf("#%04X", vm.I)),
		log.Int("sp", int(vm.Stack.SP)),
		log.Int("dt", int(vm.Timers.Delay)),
		log.Int("st", int(vm.Timers.Sound)),
		log.String("v", strings.Join(v, " ")))
}

// reportHalt logs the VM state and the instructions leading to a fault.
func reportHalt(logger *log.Logger, sched *chip8.Scheduler) {
	logState(logger, sched.VM())

	trace := sched.Trace()
	if trace == nil {
		return
	}

	for _, line := range trace.Lines() {
		logger.Error("  " + line)
	}
}
