package asp

// OpCode is the one-byte instruction tag at the head of every bytecode
// instruction; operand width (when an opcode has more than one size
// variant) is baked into the opcode value itself rather than encoded
// separately, so the dispatcher never needs a side table to know how
// many operand bytes follow.
type OpCode byte

const (
	// Generic stack operations.
	OpPUSHN  OpCode = 0x00 // None
	OpPUSHE  OpCode = 0x01 // Ellipsis
	OpPUSHF  OpCode = 0x02 // False
	OpPUSHT  OpCode = 0x03 // True
	OpPUSHI0 OpCode = 0x04 // int 0
	OpPUSHI1 OpCode = 0x05 // 1-byte integer
	OpPUSHI2 OpCode = 0x06 // 2-byte integer
	OpPUSHI4 OpCode = 0x07 // 4-byte integer
	OpPUSHD  OpCode = 0x08 // double-precision float
	OpPUSHY1 OpCode = 0x0D // 1-byte variable symbol
	OpPUSHY2 OpCode = 0x0E // 2-byte variable symbol
	OpPUSHY4 OpCode = 0x0F // 4-byte variable symbol
	OpPUSHS0 OpCode = 0x10 // empty string
	OpPUSHS1 OpCode = 0x11 // 1-byte length string
	OpPUSHS2 OpCode = 0x12 // 2-byte length string
	OpPUSHS4 OpCode = 0x13 // 4-byte length string
	OpPUSHTU OpCode = 0x14 // empty tuple
	OpPUSHLI OpCode = 0x15 // empty list
	OpPUSHSE OpCode = 0x16 // empty set
	OpPUSHDI OpCode = 0x17 // empty dictionary
	OpPUSHAL OpCode = 0x18 // argument list
	OpPUSHPL OpCode = 0x19 // parameter list
	OpPUSHCA OpCode = 0x1C // 4-byte code address
	OpPUSHM1 OpCode = 0x1D // 1-byte module symbol
	OpPUSHM2 OpCode = 0x1E // 2-byte module symbol
	OpPUSHM4 OpCode = 0x1F // 4-byte module symbol
	OpPOP    OpCode = 0x20 // pop single entry
	OpPOP1   OpCode = 0x21 // pop N entries, 1-byte count

	// Unary operations.
	OpLNOT OpCode = 0x40 // logical not
	OpPOS  OpCode = 0x48 // positive value
	OpNEG  OpCode = 0x49 // negate
	OpNOT  OpCode = 0x4F // bitwise not

	// Binary logical and arithmetic operations.
	OpOR   OpCode = 0x53
	OpXOR  OpCode = 0x54
	OpAND  OpCode = 0x55
	OpLSH  OpCode = 0x56
	OpRSH  OpCode = 0x57
	OpADD  OpCode = 0x58
	OpSUB  OpCode = 0x59
	OpMUL  OpCode = 0x5A
	OpDIV  OpCode = 0x5B
	OpFDIV OpCode = 0x5C
	OpMOD  OpCode = 0x5D
	OpPOW  OpCode = 0x5E

	// Binary comparison operations.
	OpNE    OpCode = 0x60
	OpEQ    OpCode = 0x61
	OpLT    OpCode = 0x62
	OpLE    OpCode = 0x63
	OpGT    OpCode = 0x64
	OpGE    OpCode = 0x65
	OpNIN   OpCode = 0x66
	OpIN    OpCode = 0x67
	OpNIS   OpCode = 0x68
	OpIS    OpCode = 0x69
	OpORDER OpCode = 0x6C

	// Load operations.
	OpLD1  OpCode = 0x81
	OpLD2  OpCode = 0x82
	OpLD4  OpCode = 0x83
	OpLDA1 OpCode = 0x85
	OpLDA2 OpCode = 0x86
	OpLDA4 OpCode = 0x87

	// Assignment and deletion operations.
	OpSET   OpCode = 0x88
	OpSETP  OpCode = 0x89
	OpERASE OpCode = 0x8C
	OpDEL1  OpCode = 0x8D
	OpDEL2  OpCode = 0x8E
	OpDEL4  OpCode = 0x8F

	// Global override operations.
	OpGLOB1 OpCode = 0x91
	OpGLOB2 OpCode = 0x92
	OpGLOB4 OpCode = 0x93
	OpLOC1  OpCode = 0x95
	OpLOC2  OpCode = 0x96
	OpLOC4  OpCode = 0x97

	// Iterator operations.
	OpSITER OpCode = 0xA0
	OpTITER OpCode = 0xA1
	OpNITER OpCode = 0xA2
	OpDITER OpCode = 0xA3

	// Jump operations.
	OpNOOP OpCode = 0xB0
	OpJMPF OpCode = 0xB1
	OpJMPT OpCode = 0xB2
	OpJMP  OpCode = 0xB3
	OpLOR  OpCode = 0xB4
	OpLAND OpCode = 0xB5

	// Function call/return operations.
	OpCALL OpCode = 0xB6
	OpRET  OpCode = 0xB7

	// Module operations.
	OpADDMOD1 OpCode = 0xB9
	OpADDMOD2 OpCode = 0xBA
	OpADDMOD4 OpCode = 0xBB
	OpXMOD    OpCode = 0xBC
	OpLDMOD1  OpCode = 0xBD
	OpLDMOD2  OpCode = 0xBE
	OpLDMOD4  OpCode = 0xBF

	// Function argument operations.
	OpMKARG   OpCode = 0xC0
	OpMKNARG1 OpCode = 0xC1
	OpMKNARG2 OpCode = 0xC2
	OpMKNARG4 OpCode = 0xC3
	OpMKIGARG OpCode = 0xC4
	OpMKDGARG OpCode = 0xC5

	// Function parameter operations.
	OpMKPAR1   OpCode = 0xD1
	OpMKPAR2   OpCode = 0xD2
	OpMKPAR4   OpCode = 0xD3
	OpMKDPAR1  OpCode = 0xD5
	OpMKDPAR2  OpCode = 0xD6
	OpMKDPAR4  OpCode = 0xD7
	OpMKTGPAR1 OpCode = 0xD9
	OpMKTGPAR2 OpCode = 0xDA
	OpMKTGPAR4 OpCode = 0xDB
	OpMKDGPAR1 OpCode = 0xDD
	OpMKDGPAR2 OpCode = 0xDE
	OpMKDGPAR4 OpCode = 0xDF

	// Function definition operations.
	OpMKFUN OpCode = 0xE0

	// Container entry operations.
	OpMKKVP OpCode = 0xE2

	// Range operations.
	OpMKR0  OpCode = 0xE4
	OpMKRS  OpCode = 0xE5
	OpMKRE  OpCode = 0xE6
	OpMKRSE OpCode = 0xE7
	OpMKRT  OpCode = 0xE8
	OpMKRST OpCode = 0xE9
	OpMKRET OpCode = 0xEA
	OpMKR   OpCode = 0xEB

	// Insert operations.
	OpINS  OpCode = 0xEC
	OpINSP OpCode = 0xED
	OpBLD  OpCode = 0xEE

	// Indexing operations.
	OpIDX  OpCode = 0xF0
	OpIDXA OpCode = 0xF1

	// Member look-up operations.
	OpMEM1  OpCode = 0xF4
	OpMEM2  OpCode = 0xF5
	OpMEM4  OpCode = 0xF6
	OpMEMA1 OpCode = 0xF8
	OpMEMA2 OpCode = 0xF9
	OpMEMA4 OpCode = 0xFA

	// End operations.
	OpABORT OpCode = 0xFE
	OpEND   OpCode = 0xFF
)

// opNames supplies disassembly text for the source-info tool and error
// diagnostics; unlisted opcodes render as "UNKNOWN".
var opNames = map[OpCode]string{
	OpPUSHN: "PUSHN", OpPUSHE: "PUSHE", OpPUSHF: "PUSHF", OpPUSHT: "PUSHT",
	OpPUSHI0: "PUSHI0", OpPUSHI1: "PUSHI1", OpPUSHI2: "PUSHI2", OpPUSHI4: "PUSHI4",
	OpPUSHD: "PUSHD", OpPUSHY1: "PUSHY1", OpPUSHY2: "PUSHY2", OpPUSHY4: "PUSHY4",
	OpPUSHS0: "PUSHS0", OpPUSHS1: "PUSHS1", OpPUSHS2: "PUSHS2", OpPUSHS4: "PUSHS4",
	OpPUSHTU: "PUSHTU", OpPUSHLI: "PUSHLI", OpPUSHSE: "PUSHSE", OpPUSHDI: "PUSHDI",
	OpPUSHAL: "PUSHAL", OpPUSHPL: "PUSHPL", OpPUSHCA: "PUSHCA",
	OpPUSHM1: "PUSHM1", OpPUSHM2: "PUSHM2", OpPUSHM4: "PUSHM4",
	OpPOP: "POP", OpPOP1: "POP1",
	OpLNOT: "LNOT", OpPOS: "POS", OpNEG: "NEG", OpNOT: "NOT",
	OpOR: "OR", OpXOR: "XOR", OpAND: "AND", OpLSH: "LSH", OpRSH: "RSH",
	OpADD: "ADD", OpSUB: "SUB", OpMUL: "MUL", OpDIV: "DIV", OpFDIV: "FDIV",
	OpMOD: "MOD", OpPOW: "POW",
	OpNE: "NE", OpEQ: "EQ", OpLT: "LT", OpLE: "LE", OpGT: "GT", OpGE: "GE",
	OpNIN: "NIN", OpIN: "IN", OpNIS: "NIS", OpIS: "IS", OpORDER: "ORDER",
	OpLD1: "LD1", OpLD2: "LD2", OpLD4: "LD4", OpLDA1: "LDA1", OpLDA2: "LDA2", OpLDA4: "LDA4",
	OpSET: "SET", OpSETP: "SETP", OpERASE: "ERASE",
	OpDEL1: "DEL1", OpDEL2: "DEL2", OpDEL4: "DEL4",
	OpGLOB1: "GLOB1", OpGLOB2: "GLOB2", OpGLOB4: "GLOB4",
	OpLOC1: "LOC1", OpLOC2: "LOC2", OpLOC4: "LOC4",
	OpSITER: "SITER", OpTITER: "TITER", OpNITER: "NITER", OpDITER: "DITER",
	OpNOOP: "NOOP", OpJMPF: "JMPF", OpJMPT: "JMPT", OpJMP: "JMP",
	OpLOR: "LOR", OpLAND: "LAND",
	OpCALL: "CALL", OpRET: "RET",
	OpADDMOD1: "ADDMOD1", OpADDMOD2: "ADDMOD2", OpADDMOD4: "ADDMOD4",
	OpXMOD: "XMOD", OpLDMOD1: "LDMOD1", OpLDMOD2: "LDMOD2", OpLDMOD4: "LDMOD4",
	OpMKARG: "MKARG", OpMKNARG1: "MKNARG1", OpMKNARG2: "MKNARG2", OpMKNARG4: "MKNARG4",
	OpMKIGARG: "MKIGARG", OpMKDGARG: "MKDGARG",
	OpMKPAR1: "MKPAR1", OpMKPAR2: "MKPAR2", OpMKPAR4: "MKPAR4",
	OpMKDPAR1: "MKDPAR1", OpMKDPAR2: "MKDPAR2", OpMKDPAR4: "MKDPAR4",
	OpMKTGPAR1: "MKTGPAR1", OpMKTGPAR2: "MKTGPAR2", OpMKTGPAR4: "MKTGPAR4",
	OpMKDGPAR1: "MKDGPAR1", OpMKDGPAR2: "MKDGPAR2", OpMKDGPAR4: "MKDGPAR4",
	OpMKFUN: "MKFUN", OpMKKVP: "MKKVP",
	OpMKR0: "MKR0", OpMKRS: "MKRS", OpMKRE: "MKRE", OpMKRSE: "MKRSE",
	OpMKRT: "MKRT", OpMKRST: "MKRST", OpMKRET: "MKRET", OpMKR: "MKR",
	OpINS: "INS", OpINSP: "INSP", OpBLD: "BLD",
	OpIDX: "IDX", OpIDXA: "IDXA",
	OpMEM1: "MEM1", OpMEM2: "MEM2", OpMEM4: "MEM4",
	OpMEMA1: "MEMA1", OpMEMA2: "MEMA2", OpMEMA4: "MEMA4",
	OpABORT: "ABORT", OpEND: "END",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}
