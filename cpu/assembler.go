// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const (
	LABEL_UNRESOLVED = -1 // Label referenced, but not yet declared.
	LABEL_MAX_LEN    = 64
)

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Line is a tokenized source line.
type Line struct {
	LineNo int      // Source line number, from 1.
	Text   string   // Source text, without comment.
	Words  []string // Tokens, never empty.
}

// Assembler is a two pass assembler for the SPU.
//
// The first pass records the instruction index of every label, and the
// second pass encodes every instruction with its labels resolved. Both
// passes share the same tokenized lines.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of jump labels to instruction indexes.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of an integer equate, with or without '$'.
func valueOf(word string) (value int64, err error) {
	value, err = strconv.ParseInt(strings.TrimPrefix(word, "$"), 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		value, err := valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(value)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// characterEval converts a 'c' character literal to its value.
func characterEval(word string) (value string, ok bool) {
	str := word[1 : len(word)-1]
	if str[0] == '\\' {
		switch str[1:] {
		case "\\":
			str = "\\"
		case "n":
			str = "\n"
		case "r":
			str = "\r"
		case "t":
			str = "\t"
		case "e":
			str = "\033"
		case "0":
			str = "\000"
		default:
			return
		}
	} else if len(str) != 1 {
		return
	}
	value = strconv.Itoa(int(str[0]))
	ok = true
	return
}

// stripComment removes a ';' or '#' comment, ignoring those quoted as
// character literals.
func stripComment(text string) string {
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\'':
			if loc := reCharacter.FindStringIndex(text[n:]); loc != nil && loc[0] == 0 {
				n += loc[1] - 1
			}
		case ';', '#':
			return text[:n]
		}
	}
	return text
}

// parseLine expands a single line into words, handling equates.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = strconv.Itoa(lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		value, ok := characterEval(word)
		if !ok {
			return word
		}
		return value
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return "$" + strconv.FormatInt(value, 10)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)
	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = fmt.Errorf("%w: %v", ErrEquateDuplicate, words[1])
			return
		}
		asm.Equate[words[1]] = words[2]
		words = nil
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	return
}

// Tokenize splits the input into lines of words, stripping comments and
// evaluating equates and expressions. Empty lines are dropped.
func (asm *Assembler) Tokenize(input io.Reader) (lines []Line, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		line = strings.TrimSpace(stripComment(text))

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		if len(words) == 0 {
			continue
		}

		lines = append(lines, Line{LineNo: lineno, Text: line, Words: words})
	}

	err = scanner.Err()
	return
}

// labelOf returns the label declared by a word.
func labelOf(word string) (label string, ok bool) {
	if len(word) < 2 || word[0] != '.' || word[len(word)-1] != ':' {
		return
	}

	label = word[1 : len(word)-1]
	ok = true
	return
}

func checkLabel(label string) (err error) {
	if len(label) == 0 || len(label) > LABEL_MAX_LEN || strings.ContainsAny(label, ".:") {
		err = fmt.Errorf("%w: '.%v'", ErrLabelInvalid, label)
		return
	}
	return
}

// labelResolver resolves jump targets for the instruction at ip.
type labelResolver struct {
	asm   *Assembler
	final bool
	ip    int
}

func (res *labelResolver) Resolve(operand string) (offset int64, err error) {
	label := strings.TrimPrefix(operand, ".")
	err = checkLabel(label)
	if err != nil {
		return
	}

	target, ok := res.asm.Label[label]
	if !ok || target == LABEL_UNRESOLVED {
		if res.final {
			err = ErrLabelMissing(label)
			return
		}
		// Not yet known, placeholder offset until the final pass.
		res.asm.Label[label] = LABEL_UNRESOLVED
		return
	}

	offset = int64(target - res.ip - 1)
	return
}

// assemble encodes the words of a single instruction.
func (asm *Assembler) assemble(words []string, res Resolver) (code Word, err error) {
	mnemonic, suffix, dotted := strings.Cut(words[0], ".")
	cmd, ok := Commands.Lookup(mnemonic)
	if !ok {
		err = fmt.Errorf("%w: '%v'", ErrInstructionInvalid, words[0])
		return
	}

	if dotted && (!cmd.Conditional || suffix == "") {
		err = fmt.Errorf("%w: '%v'", ErrCondInvalid, words[0])
		return
	}

	args, err := cmd.Shape.DecodeText(words, res)
	if err != nil {
		return
	}

	code, err = Instruction{Command: cmd, Args: args}.Encode()
	return
}

// pass assembles all lines. Only the first pass declares labels, and only
// the final pass requires every label to be resolved.
func (asm *Assembler) pass(lines []Line, final bool) (opcodes []Opcode, err error) {
	var line Line

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: line.LineNo, Line: line.Text, Err: err}
		}
	}()

	res := &labelResolver{asm: asm, final: final}

	for _, line = range lines {
		words := line.Words

		if label, ok := labelOf(words[0]); ok {
			if len(words) != 1 {
				err = fmt.Errorf("%w: '%v' must be alone on its line", ErrLabelInvalid, words[0])
				return
			}
			err = checkLabel(label)
			if err != nil {
				return
			}
			if final {
				continue
			}
			if ip, ok := asm.Label[label]; ok && ip != LABEL_UNRESOLVED {
				err = fmt.Errorf("%w: '.%v'", ErrLabelDuplicate, label)
				return
			}
			asm.Label[label] = len(opcodes)
			continue
		}

		ip := len(opcodes)
		res.ip = ip

		var code Word
		code, err = asm.assemble(words, res)
		if err != nil {
			return
		}

		if asm.Verbose && final {
			log.Printf("%04x: %08x %v", ip, uint32(code), strings.Join(words, " "))
		}

		opcodes = append(opcodes, Opcode{LineNo: line.LineNo, Ip: ip, Words: words, Code: code})
	}

	return
}

// Parse assembles an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	lines, err := asm.Tokenize(input)
	if err != nil {
		return
	}

	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	clear(asm.Label)

	_, err = asm.pass(lines, false)
	if err != nil {
		return
	}

	opcodes, err := asm.pass(lines, true)
	if err != nil {
		return
	}

	if asm.Verbose {
		log.Printf("asm: %d instructions, %d labels", len(opcodes), len(asm.Label))
	}

	prog = &Program{
		Opcodes: opcodes,
	}

	return
}
