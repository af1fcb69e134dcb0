package latc

import "fmt"

// CompilerConfig is the typed configuration map threaded through the
// compile pipeline. It plays the same role as the original driver's
// --peephole/--const_expr flags, but kept as a map (rather than a
// fixed struct) so additional toggles can be added without changing
// every call site that threads config through.
type CompilerConfig map[string]*cfgVal

// NewCompilerConfig returns a config primed with this compiler's
// defaults: peephole optimization and constant folding both on, and
// no optimization beyond what spec.md §1 allows (two scratch
// registers, no register allocation).
func NewCompilerConfig() *CompilerConfig {
	c := make(CompilerConfig)
	c.SetBool("codegen.peephole", true)
	c.SetBool("codegen.const_expr", true)
	c.SetInt("codegen.asm_optimize", 0)
	return &c
}

type cfgValType int

const (
	cfgValTypeUndefined cfgValType = iota
	cfgValTypeBool
	cfgValTypeInt
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValTypeUndefined: "undefined",
		cfgValTypeBool:      "bool",
		cfgValTypeInt:       "int",
	}[vt]
}

type cfgVal struct {
	typ    cfgValType
	asBool bool
	asInt  int
}

func (v *cfgVal) assignType(vt cfgValType) {
	if v.typ != vt && v.typ != cfgValTypeUndefined {
		panic(fmt.Sprintf("can't assign `%s` to type `%s`", vt, v.typ))
	}
	v.typ = vt
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (c *CompilerConfig) SetBool(path string, v bool) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeBool)
	(*c)[path].asBool = v
}

func (c *CompilerConfig) SetInt(path string, v int) {
	(*c)[path] = &cfgVal{}
	(*c)[path].assignType(cfgValTypeInt)
	(*c)[path].asInt = v
}

func (c *CompilerConfig) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeBool)
		return val.asBool
	}
	panic(fmt.Sprintf("bool setting `%s` does not exist", path))
}

func (c *CompilerConfig) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValTypeInt)
		return val.asInt
	}
	panic(fmt.Sprintf("int setting `%s` does not exist", path))
}

