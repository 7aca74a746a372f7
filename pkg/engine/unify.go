package engine

// Unify performs Robinson unification of a and b under env, returning the
// extended environment on success. Bindings are walked, not fully
// substituted, and a fresh Variable binding is guarded by an occurs check
// so the resulting substitution stays finite and acyclic (spec §4.2).
func Unify(a, b Term, env Environment) (Environment, bool) {
	a = env.Walk(a)
	b = env.Walk(b)

	if a.kind == KindVariable && b.kind == KindVariable && a.name == b.name {
		return env, true
	}
	if a.kind == KindVariable {
		return bindVariable(a.name, b, env)
	}
	if b.kind == KindVariable {
		return bindVariable(b.name, a, env)
	}
	if a.kind != b.kind {
		return env, false
	}
	switch a.kind {
	case KindConstant, KindNumber:
		return env, a.name == b.name
	case KindCompound:
		if a.functor != b.functor || len(a.args) != len(b.args) {
			return env, false
		}
		return unifyArgs(a.args, b.args, env)
	case KindList:
		aEmpty := a.head == nil
		bEmpty := b.head == nil
		if aEmpty != bEmpty {
			return env, false
		}
		if aEmpty {
			return env, true
		}
		next, ok := Unify(*a.head, *b.head, env)
		if !ok {
			return env, false
		}
		return Unify(*a.tail, *b.tail, next)
	default:
		return env, false
	}
}

func unifyArgs(as, bs []Term, env Environment) (Environment, bool) {
	for i := range as {
		var ok bool
		env, ok = Unify(as[i], bs[i], env)
		if !ok {
			return env, false
		}
	}
	return env, true
}

// bindVariable binds varName to t under env, after an occurs check that
// fails if varName occurs anywhere inside t (walking through any Variables
// encountered along the way). This is the step that guarantees termination
// of FullResolve (spec §4.2, §8).
func bindVariable(varName string, t Term, env Environment) (Environment, bool) {
	if occurs(varName, t, env) {
		return env, false
	}
	return env.Extend(varName, t), true
}

func occurs(varName string, t Term, env Environment) bool {
	t = env.Walk(t)
	switch t.kind {
	case KindVariable:
		return t.name == varName
	case KindCompound:
		for _, a := range t.args {
			if occurs(varName, a, env) {
				return true
			}
		}
		return false
	case KindList:
		if t.head == nil {
			return false
		}
		return occurs(varName, *t.head, env) || occurs(varName, *t.tail, env)
	default:
		return false
	}
}
