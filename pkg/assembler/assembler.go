// Copyright (C) 2026  The gomlem authors

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package assembler translates the textual instruction form into programs
// and back. One instruction per line; a bare leading identifier declares a
// label; ';' starts a comment.
//
//	fill    input r0
//	        push r0
//	        jump fill
package assembler

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"github.com/gomlem/gomlem/pkg/encoding"
	"github.com/gomlem/gomlem/pkg/machine"
)

func parseMnemonic(ident string) (machine.Opcode, bool) {
	for op := machine.OpNoOp; op <= machine.OpIllegal; op++ {
		if strings.EqualFold(ident, op.String()) {
			return op, true
		}
	}

	return machine.OpIllegal, false
}

func parseRegister(ident string) (machine.Register, bool) {
	if strings.EqualFold(ident, "R0") {
		return machine.R0, true
	} else if strings.EqualFold(ident, "R1") {
		return machine.R1, true
	} else if strings.EqualFold(ident, "R2") {
		return machine.R2, true
	} else if strings.EqualFold(ident, "R3") {
		return machine.R3, true
	} else if strings.EqualFold(ident, "R4") {
		return machine.R4, true
	} else if strings.EqualFold(ident, "R5") {
		return machine.R5, true
	} else if strings.EqualFold(ident, "R6") {
		return machine.R6, true
	} else if strings.EqualFold(ident, "R7") {
		return machine.R7, true
	} else if strings.EqualFold(ident, "SP") {
		return machine.SP, true
	} else if strings.EqualFold(ident, "BP") {
		return machine.BP, true
	}

	return 0, false
}

// parseStackOperand resolves the inside of a bracketed operand: [N] is an
// absolute stack offset, [bp], [bp+N] and [bp-N] are BP-relative.
func parseStackOperand(token *Token) (machine.Address, error) {
	value := token.Value

	if len(value) >= 2 && strings.EqualFold(value[:2], "BP") {
		rest := value[2:]

		if rest == "" {
			return machine.RelBP(0), nil
		}

		if rest[0] == '+' {
			rest = rest[1:]
		} else if rest[0] != '-' {
			return machine.Address{},
				&InvalidStackOperandError{token.Position, value}
		}

		offset, err := encoding.DecodeInt(rest)

		if err != nil {
			return machine.Address{},
				&InvalidStackOperandError{token.Position, value}
		}

		return machine.RelBP(offset), nil
	}

	offset, err := encoding.DecodeWord(value)

	if err != nil {
		return machine.Address{},
			&InvalidStackOperandError{token.Position, value}
	}

	return machine.StackAt(offset), nil
}

// AssembleSource assembles the textual form into a program. All errors are
// positioned; a non-empty error slice means the program is unusable. When
// symtable is non-nil it is filled with address-to-line offsets and label
// declarations.
func AssembleSource(input io.Reader, symtable *SymTable) (result machine.Program, errs []error) {
	type LabelRef struct {
		Label    string
		Addr     machine.Word
		Slot     int
		Position Cursor
	}

	var labels = make(map[string]machine.Word)
	var labelRefs []LabelRef

	var builder strings.Builder
	var scanner = bufio.NewScanner(input)

	var cursor = Cursor{Line: 1, Column: 0, Size: 0, Byte: 0}

	result = make(machine.Program, 0)
	errs = make([]error, 0)

	for scanner.Scan() {
		var tokens = make([]Token, 0, 4)
		var tokenStart int = 0
		var tokenType TokenType = TOKEN_NONE

		var lineErrs = len(errs)

		line := scanner.Text()
		builder.Grow(len(line))

		cursor.Size = int64(len(line))

		// Parse Line:
		// - Gather tokens and their types
		// - Check for syntax errors
		for column, char := range line {
			cursor.Column = column + 1

			var flush bool = false
			var skip bool = false
			var write bool = true

			if tokenType == TOKEN_NONE {
				tokenStart = cursor.Column
			}

			switch {
			// Whitespace
			case unicode.IsSpace(char):
				if tokenType == TOKEN_NONE {
					continue
				} else if tokenType != TOKEN_STACK {
					flush = true
				}

			// Comments
			case char == ';':
				if tokenType == TOKEN_NONE {
					skip = true
				} else {
					flush = true
					skip = true
				}

			// Operand Separator
			case char == ',':
				if tokenType == TOKEN_STACK {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				} else {
					flush = true
				}

			// Stack Operand (i.e. [3], [bp+1])
			case char == '[':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_STACK
					write = false
				} else {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			case char == ']':
				if tokenType == TOKEN_STACK {
					flush = true
					write = false
				} else {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// Hex Literal (i.e. x2A, no leading zero)
			case char == 'x' || char == 'X':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				}

			// Base 10 Literal (i.e. #42)
			case char == '#':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				} else if tokenType != TOKEN_STACK {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// Numeric Literal
			case unicode.IsDigit(char):
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				}

			// Numeric Sign
			case char == '-' || char == '+':
				if tokenType != TOKEN_LITERAL && tokenType != TOKEN_STACK {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// Underscore'd Identifier
			case char == '_':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_IDENT
				} else if tokenType != TOKEN_IDENT {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// Identifier
			case unicode.IsLetter(char):
				if char > unicode.MaxASCII {
					errs = append(errs, &OversizedCharacterError{cursor})
				}

				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_IDENT
				}

			default:
				if char > unicode.MaxASCII {
					errs = append(errs, &OversizedCharacterError{cursor})
				}

				errs = append(errs, &UnexpectedCharacterError{cursor, char})
			}

			if cursor.Column == len(line) {
				if tokenType == TOKEN_STACK && char != ']' {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				} else if char == ',' {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

				flush = true
			}

			if write && !skip && !unicode.IsSpace(char) &&
				char != ',' && char != ';' {
				builder.WriteRune(char)
			}

			if flush {
				if builder.Len() > 0 {
					var token Token
					token.Position = Cursor{
						Line:     cursor.Line,
						Column:   tokenStart,
						Byte:     cursor.Byte + int64(tokenStart-1),
						Size:     int64(builder.Len()),
						LineByte: cursor.Byte,
					}
					token.Type = tokenType
					token.Value = builder.String()
					tokens = append(tokens, token)
					builder.Reset()
				}

				flush = false
				tokenType = TOKEN_NONE
			}

			if skip {
				break
			}
		}

		builder.Reset()

		if len(tokens) == 0 || len(errs) > lineErrs {
			cursor.Line++
			cursor.Byte += int64(len(line) + 1)
			cursor.LineByte += int64(len(line) + 1)
			continue
		}

		// Assemble line
		// - Record label declarations
		// - Type check operands and build the instruction
		// - Save label refs for second-pass resolution
		var keyword *Token = nil
		var operands []Token
		var op machine.Opcode

		if mnemonic, ok := parseMnemonic(tokens[0].Value); ok {
			op = mnemonic
			keyword = &tokens[0]
			operands = tokens[1:]
		} else if tokens[0].Type == TOKEN_IDENT {
			label := &tokens[0]

			if _, exists := labels[label.Value]; !exists {
				labels[label.Value] = machine.Word(len(result))
			} else {
				errs = append(
					errs, &RedeclaredLabelError{label.Position, label.Value},
				)
			}

			// No need to assemble label-only statements
			if len(tokens) == 1 {
				cursor.Line++
				cursor.Byte += int64(len(line) + 1)
				cursor.LineByte += int64(len(line) + 1)
				continue
			}

			if mnemonic, ok := parseMnemonic(tokens[1].Value); ok {
				op = mnemonic
				keyword = &tokens[1]
				operands = tokens[2:]
			}
		}

		if keyword == nil {
			errs = append(
				errs,
				&UnknownIdentifierError{tokens[0].Position, tokens[0].Value},
			)

			cursor.Line++
			cursor.Byte += int64(len(line) + 1)
			cursor.LineByte += int64(len(line) + 1)
			continue
		}

		if count := len(operands); count != op.Operands() {
			errs = append(
				errs,
				&InvalidNumArgumentsError{
					keyword.Position, op.Operands(), count,
				},
			)

			cursor.Line++
			cursor.Byte += int64(len(line) + 1)
			cursor.LineByte += int64(len(line) + 1)
			continue
		}

		ins := machine.Instruction{Op: op}

		for slot := range operands {
			operand := &operands[slot]

			var addr machine.Address

			switch operand.Type {
			case TOKEN_IDENT:
				if reg, ok := parseRegister(operand.Value); ok {
					addr = machine.Reg(reg)
				} else {
					// Labels assemble as immediate addresses, resolved
					// in the second pass.
					labelRefs = append(
						labelRefs,
						LabelRef{
							operand.Value,
							machine.Word(len(result)),
							slot,
							operand.Position,
						},
					)
				}

			case TOKEN_LITERAL:
				literal, err := encoding.DecodeWord(operand.Value)

				if err != nil {
					errs = append(
						errs, &InvalidLiteralError{operand.Position},
					)

					continue
				}

				addr = machine.Imm(literal)

			case TOKEN_STACK:
				stack, err := parseStackOperand(operand)

				if err != nil {
					errs = append(errs, err)
					continue
				}

				addr = stack

			default:
				errs = append(
					errs,
					&InvalidOperandError{
						operand.Position,
						[]TokenType{TOKEN_IDENT, TOKEN_LITERAL, TOKEN_STACK},
						operand.Type,
					},
				)

				continue
			}

			if slot == 0 {
				ins.A = addr
			} else {
				ins.B = addr
			}
		}

		if symtable != nil {
			symtable.Symbols[machine.Word(len(result))] = cursor.LineByte
		}

		result = append(result, ins)

		cursor.Line++
		cursor.Byte += int64(len(line) + 1)
		cursor.LineByte += int64(len(line) + 1)
	}

	// Label
	// - Validate and resolve label references
	// - Add labels to symbol table
	for _, ref := range labelRefs {
		addr, exists := labels[ref.Label]

		if !exists {
			errs = append(errs, &UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		if ref.Slot == 0 {
			result[ref.Addr].A = machine.Imm(addr)
		} else {
			result[ref.Addr].B = machine.Imm(addr)
		}
	}

	if symtable != nil {
		for label, addr := range labels {
			symtable.Labels[addr] = label
		}
	}

	return
}
