package kpcs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrRead is returned when an instance file cannot be opened or read.
var ErrRead = errors.New("unable to read file")

const maxLineSize = 1 << 20

type parseState int

const (
	stateNone parseState = iota
	stateItems
	stateConflicts
)

func (s parseState) String() string {
	switch s {
	case stateItems:
		return "items"
	case stateConflicts:
		return "conflicts"
	default:
		return "none"
	}
}

type parser struct {
	inst  *Instance
	state parseState
}

// A controlLine consumes the line it matches; it never contributes data.
type controlLine struct {
	prefix string
	exact  bool
	apply  func(p *parser, rest string)
}

// Checked in order; the first match wins.
var controlLines = []controlLine{
	{prefix: "param n :=", apply: func(p *parser, rest string) {
		if v, ok := parseParam(rest); ok {
			p.inst.DeclaredCount = v
			p.inst.HasDeclaredCount = true
		}
	}},
	{prefix: "param c :=", apply: func(p *parser, rest string) {
		if v, ok := parseParam(rest); ok {
			p.inst.Capacity = v
		}
	}},
	{prefix: "param : V : p w :=", apply: func(p *parser, _ string) { p.state = stateItems }},
	{prefix: "set E :=", apply: func(p *parser, _ string) { p.state = stateConflicts }},
	{prefix: ";", exact: true, apply: func(p *parser, _ string) { p.state = stateNone }},
}

// Data lines that do not have the shape expected by the active state are
// dropped without error.
var dataHandlers = map[parseState]func(inst *Instance, fields []string){
	stateNone: func(*Instance, []string) {},
	stateItems: func(inst *Instance, fields []string) {
		if item, ok := parseItemLine(fields); ok {
			inst.Items = append(inst.Items, item)
		}
	},
	stateConflicts: func(inst *Instance, fields []string) {
		if pair, ok := parseConflictLine(fields); ok {
			inst.Conflicts = append(inst.Conflicts, pair)
		}
	},
}

func parseParam(rest string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(rest, ";", "")))
	if err != nil {
		return 0, false
	}
	return v, true
}

func atoiAll(fields []string) ([]int, bool) {
	nums := make([]int, len(fields))
	for i, tok := range fields {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return nil, false
		}
		nums[i] = v
	}
	return nums, true
}

// parseItemLine reads "<idx> <value> <weight>". The declared idx is not used:
// items are identified by the order in which they appear.
func parseItemLine(fields []string) (Item, bool) {
	if len(fields) != 3 {
		return Item{}, false
	}
	nums, ok := atoiAll(fields)
	if !ok || nums[1] < 0 || nums[2] < 0 {
		return Item{}, false
	}
	return Item{Value: nums[1], Weight: nums[2]}, true
}

func parseConflictLine(fields []string) ([2]int, bool) {
	if len(fields) != 2 {
		return [2]int{}, false
	}
	nums, ok := atoiAll(fields)
	if !ok {
		return [2]int{}, false
	}
	return [2]int{nums[0], nums[1]}, true
}

func (p *parser) control(line string) bool {
	for _, cl := range controlLines {
		if cl.exact && line == cl.prefix {
			cl.apply(p, "")
			return true
		}
		if !cl.exact && strings.HasPrefix(line, cl.prefix) {
			cl.apply(p, line[len(cl.prefix):])
			return true
		}
	}
	return false
}

func (p *parser) feed(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	if p.control(line) {
		return
	}
	dataHandlers[p.state](p.inst, strings.Fields(line))
}

// ParseInstance reads an instance in the tagged-section text format. Only a
// read error from r is fatal.
func ParseInstance(r io.Reader) (*Instance, error) {
	p := &parser{inst: new(Instance)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		p.feed(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return p.inst, nil
}

func LoadInstance(filename string) (*Instance, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer file.Close()

	return ParseInstance(file)
}

// WriteTo writes inst in the tagged-section format read by ParseInstance.
func (inst *Instance) WriteTo(w io.Writer) (int64, error) {
	s := new(strings.Builder)
	fmt.Fprintf(s, "param n := %d;\n", len(inst.Items))
	fmt.Fprintf(s, "param c := %d;\n\n", inst.Capacity)
	s.WriteString("param : V : p w :=\n")
	for i, item := range inst.Items {
		fmt.Fprintf(s, "%d %d %d\n", i, item.Value, item.Weight)
	}
	s.WriteString(";\n\nset E :=\n")
	for _, pair := range inst.Conflicts {
		fmt.Fprintf(s, "%d %d\n", pair[0], pair[1])
	}
	s.WriteString(";\n")
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}
