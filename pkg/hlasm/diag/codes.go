package diag

// Diagnostic code families from spec.md §7. These are string constants
// rather than an enum so that new codes can be added by any package without
// an import cycle back into diag.
const (
	// Expression errors (local to one expression evaluation).
	CodeBadLiteral           = "ME001" // bad self-defining literal
	CodeRelocInMulDiv        = "ME002" // relocatable operand in * or /
	CodeOddRelAddr           = "ME003" // odd relative-address difference
	CodeLabelInAbsoluteCtx   = "ME004" // label used where absolute required
	CodeLabelWithoutUsing    = "ME005" // label without an active USING
	CodeUsingFailedBase      = "ME007" // relocatable operand could not be based
	CodeUsingOutOfRange      = "ME008" // displacement out of range for the instruction
	CodeUsingAmbiguous       = "ME009" // ambiguous USING candidate
	CodeUsingNoActiveMapping = "ME010" // no active USING maps the address
	CodeUsingBadQualifier    = "ME011" // bad/unknown USING qualifier
	CodeRelAddrAbsolute     = "ME012" // rel_addr operand was already absolute; used unchanged

	// Symbol errors (attached to the operand range).
	CodeUndefinedSymbol = "E010" // symbol was never mentioned/defined
	CodeUnresolved      = "E016" // dependency could not be resolved by end of program (fallback)
	CodeDependencyCycle = "E017" // a symbol/space's own definition depends on itself

	// Operand-shape errors (instruction checker).
	CodeBadOperandCount  = "M003"
	CodeBadOperandShape  = "M104"
	CodeDisplacementMin  = "M110"
	CodeDisplacementMax  = "M111"
	CodeRegisterRange    = "M120"
	CodeRegisterParity   = "M121"
	CodeMaskRange        = "M130"
	CodeImmediateRange   = "M131"
	CodeVectorRegRange   = "M135"
	CodeInstructionError = "I999"

	// Data-definition errors.
	CodeBadDupFactor    = "D007"
	CodeBadLength       = "D015"
	CodeBadScale        = "D022"
	CodeBadNominalValue = "D034"

	// USING-specific.
	CodeDropIneffective = "U001" // warning: DROP on a register that was not active
	CodeDuplicateBase   = "U002"
	CodeBadUsingRange   = "U003"
	CodeUsingBadBase    = "U004"
	CodeDropBadArgument = "U005"
	CodeUsingRedefine   = "U006"

	// Assembler-instruction errors.
	CodeAsmBadOperand    = "A012"
	CodeAsmOrdSymbolReq  = "A104"
	CodeAsmBadAlignment  = "A164"
	CodeAsmBadExpression = "A165"
	CodeAsmBadNominal    = "A251"
)
