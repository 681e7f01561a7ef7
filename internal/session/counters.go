package session

type opKind int

const (
	opNone opKind = iota
	opIncrement
	opDecrement
	opAbsolute
)

// Op is a counter operation. The zero Op changes nothing.
type Op struct {
	kind  opKind
	value int
}

func Increment() Op { return Op{kind: opIncrement} }
func Decrement() Op { return Op{kind: opDecrement} }
func Absolute(n int) Op { return Op{kind: opAbsolute, value: n} }

// Counters are named integers local to one Controller.
type Counters struct {
	values map[string]int
}

func NewCounters() *Counters {
	return &Counters{values: map[string]int{}}
}

// Read returns the counter value, 0 for names never touched.
func (c *Counters) Read(name string) int {
	return c.values[name]
}

// Apply runs op on the counter and returns the resulting value.
func (c *Counters) Apply(name string, op Op) int {
	v := c.values[name]
	switch op.kind {
	case opIncrement:
		v++
	case opDecrement:
		v--
	case opAbsolute:
		v = op.value
	}
	c.values[name] = v
	return v
}
