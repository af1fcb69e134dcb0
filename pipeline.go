package latc

// Compile runs the full front-to-back pipeline over an already-parsed
// program and returns the generated NASM text, matching latc.py's
// compile() stage order exactly: state loading, semantic analysis,
// constant folding, return-reachability checking, dead-code pruning,
// locals counting, string collection, and code generation (with a
// peephole pass). cfg's codegen.const_expr gates both constant folding
// and pruning (with it off, reachability sees no folded conditions),
// and codegen.peephole gates the peephole pass.
func Compile(prog *Program, cfg *CompilerConfig) (string, error) {
	if cfg == nil {
		cfg = NewCompilerConfig()
	}

	loader := &StateLoader{}
	st, err := loader.Load(prog)
	if err != nil {
		return "", err
	}

	analyzer := &Analyzer{}
	if err := analyzer.Analyze(st, prog); err != nil {
		return "", err
	}

	if cfg.GetBool("codegen.const_expr") {
		eval := &ConstEvaluator{}
		if err := eval.Evaluate(prog); err != nil {
			return "", err
		}
	}

	reach := &ReachabilityChecker{}
	if err := reach.CheckReturns(prog); err != nil {
		return "", err
	}

	if cfg.GetBool("codegen.const_expr") {
		pruner := &Pruner{}
		pruner.Prune(prog)
	}

	CountLocals(prog)

	strCollector := &StringCollector{}
	labels := strCollector.Collect(prog)

	return GenerateProgram(st, prog, labels, cfg), nil
}
