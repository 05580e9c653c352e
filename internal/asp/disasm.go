package asp

import (
	"fmt"
	"strings"
)

// Instruction is one decoded entry of a disassembled code stream.
type Instruction struct {
	Offset uint32
	Op     OpCode
	Text   string // operand rendering, e.g. "5", "sym=12", "len=3 \"abc\""
}

// String renders an instruction the way cmd/aspengine's disasm subcommand
// prints one line per instruction: offset, mnemonic, operand.
func (ins Instruction) String() string {
	if ins.Text == "" {
		return fmt.Sprintf("%06d  %s", ins.Offset, ins.Op)
	}
	return fmt.Sprintf("%06d  %-8s %s", ins.Offset, ins.Op, ins.Text)
}

// Disassemble walks a raw code buffer (no header) and decodes it into a
// flat instruction list, using the same operand readers the dispatcher
// itself uses — a disassembler is a dispatcher that never touches the
// arena or the stack, only the code cursor.
func Disassemble(code []byte) ([]Instruction, error) {
	e := &Engine{code: code, codeEnd: uint32(len(code))}

	var out []Instruction
	for e.pc < e.codeEnd {
		offset := e.pc
		opByte, res := e.fetchByte()
		if res != RunResultOK {
			return out, fmt.Errorf("disasm: %s at offset %d", res, offset)
		}
		op := OpCode(opByte)

		text, res := e.disasmOperand(op)
		if res != RunResultOK {
			return out, fmt.Errorf("disasm: %s decoding operand for %s at offset %d", res, op, offset)
		}
		out = append(out, Instruction{Offset: offset, Op: op, Text: text})

		if op == OpEND || op == OpABORT {
			break
		}
	}
	return out, nil
}

// disasmOperand decodes and renders the operand bytes (if any) following
// op, advancing e.pc exactly as the real dispatcher's decode step would.
func (e *Engine) disasmOperand(op OpCode) (string, RunResult) {
	switch op {
	case OpPUSHI1, OpPUSHI2, OpPUSHI4:
		n, res := e.readInt(intWidthFor(op))
		return fmt.Sprintf("%d", n), res
	case OpPUSHD:
		f, res := e.readFloat64()
		return fmt.Sprintf("%g", f), res
	case OpPUSHY1, OpPUSHY2, OpPUSHY4, OpLD1, OpLD2, OpLD4, OpLDA1, OpLDA2, OpLDA4,
		OpDEL1, OpDEL2, OpDEL4, OpGLOB1, OpGLOB2, OpGLOB4, OpLOC1, OpLOC2, OpLOC4,
		OpMEM1, OpMEM2, OpMEM4, OpMEMA1, OpMEMA2, OpMEMA4, OpLDMOD1, OpLDMOD2, OpLDMOD4:
		n, res := e.readSymbol(symbolWidthForAny(op))
		return fmt.Sprintf("sym=%d", n), res
	case OpPUSHM1, OpPUSHM2, OpPUSHM4:
		n, res := e.readSymbol(symbolWidthFor(op))
		return fmt.Sprintf("sym=%d", n), res
	case OpADDMOD1, OpADDMOD2, OpADDMOD4:
		n, res := e.readSymbol(symbolWidthForAny(op))
		if res != RunResultOK {
			return "", res
		}
		addr, res := e.readUint(4)
		return fmt.Sprintf("sym=%d addr=%d", n, addr), res
	case OpMKFUN:
		isApp, res := e.readUint(1)
		if res != RunResultOK {
			return "", res
		}
		n, res := e.readInt(4)
		return fmt.Sprintf("app=%d value=%d", isApp, n), res
	case OpPUSHS1, OpPUSHS2, OpPUSHS4:
		n, res := e.readUint(strWidthFor(op))
		if res != RunResultOK {
			return "", res
		}
		data, res := e.readBytes(n)
		if res != RunResultOK {
			return "", res
		}
		return fmt.Sprintf("len=%d %q", n, string(data)), RunResultOK
	case OpPUSHCA, OpJMPF, OpJMPT, OpJMP, OpLOR, OpLAND:
		addr, res := e.readUint(4)
		return fmt.Sprintf("addr=%d", addr), res
	case OpPOP1:
		n, res := e.readUint(1)
		return fmt.Sprintf("%d", n), res
	case OpMKNARG1, OpMKNARG2, OpMKNARG4, OpMKPAR1, OpMKPAR2, OpMKPAR4,
		OpMKDPAR1, OpMKDPAR2, OpMKDPAR4, OpMKTGPAR1, OpMKTGPAR2, OpMKTGPAR4,
		OpMKDGPAR1, OpMKDGPAR2, OpMKDGPAR4:
		n, res := e.readSymbol(symbolWidthForAny(op))
		return fmt.Sprintf("sym=%d", n), res
	default:
		return "", RunResultOK
	}
}

// symbolWidthForAny extends symbolWidthFor's opcode-to-width mapping to
// every width-suffixed opcode family (LD/LDA/DEL/GLOB/LOC/MEM/MEMA/
// ADDMOD/LDMOD/MK*ARG/MK*PAR), all of which share the same
// 1/2/4-byte-by-opcode-digit convention.
func symbolWidthForAny(op OpCode) uint32 {
	switch op {
	case OpPUSHY1, OpLD1, OpLDA1, OpDEL1, OpGLOB1, OpLOC1, OpMEM1, OpMEMA1, OpADDMOD1, OpLDMOD1,
		OpMKNARG1, OpMKPAR1, OpMKDPAR1, OpMKTGPAR1, OpMKDGPAR1:
		return 1
	case OpPUSHY2, OpLD2, OpLDA2, OpDEL2, OpGLOB2, OpLOC2, OpMEM2, OpMEMA2, OpADDMOD2, OpLDMOD2,
		OpMKNARG2, OpMKPAR2, OpMKDPAR2, OpMKTGPAR2, OpMKDGPAR2:
		return 2
	default:
		return 4
	}
}

// FormatInstructions renders a full instruction list as disasm's
// newline-joined text output.
func FormatInstructions(instructions []Instruction) string {
	lines := make([]string, len(instructions))
	for i, ins := range instructions {
		lines[i] = ins.String()
	}
	return strings.Join(lines, "\n")
}
