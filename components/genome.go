package components

import "fmt"

// Op identifies an instruction kind.
type Op uint8

const (
	OpSetDirection Op = iota // Rotate by Delta
	OpReproduce              // Spawn an offspring in the faced cell
	OpAttack                 // Damage a foreign lineage in the faced cell

	// NumOps is the number of instruction kinds.
	NumOps
)

// String returns the op's config name.
func (o Op) String() string {
	switch o {
	case OpSetDirection:
		return "turn"
	case OpReproduce:
		return "reproduce"
	case OpAttack:
		return "attack"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// ParseOp converts a config name back into an Op.
func ParseOp(name string) (Op, bool) {
	switch name {
	case "turn":
		return OpSetDirection, true
	case "reproduce":
		return OpReproduce, true
	case "attack":
		return OpAttack, true
	}
	return 0, false
}

// Instruction is a single genome step. Delta is only meaningful for OpSetDirection.
type Instruction struct {
	Op    Op
	Delta int
}

// SetDirection builds a rotation instruction.
func SetDirection(delta int) Instruction {
	return Instruction{Op: OpSetDirection, Delta: delta}
}

// Reproduce builds a reproduction instruction.
func Reproduce() Instruction {
	return Instruction{Op: OpReproduce}
}

// Attack builds an attack instruction.
func Attack() Instruction {
	return Instruction{Op: OpAttack}
}

func (i Instruction) String() string {
	if i.Op == OpSetDirection {
		return fmt.Sprintf("turn(%+d)", i.Delta)
	}
	return i.Op.String()
}

// Genome is the ordered instruction sequence a cell repeats.
type Genome []Instruction

// Clone returns a copy that shares no backing array with g.
func (g Genome) Clone() Genome {
	out := make(Genome, len(g))
	copy(out, g)
	return out
}
