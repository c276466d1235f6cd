package ir

import "fmt"

// EncodeComp converts a comprehension to the map shape used for canonical
// JSON snapshots. The shape is the versioned contract for golden files:
// renderer changes must never affect it, and absent fields are omitted
// rather than emitted as null.
func EncodeComp(c *Comp) (map[string]any, error) {
	m := map[string]any{
		"node": "comp",
		"kind": string(c.Kind),
	}
	if c.Element != nil {
		e, err := EncodeExpr(c.Element)
		if err != nil {
			return nil, err
		}
		m["element"] = e
	}
	if c.Key != nil {
		k, err := EncodeExpr(c.Key)
		if err != nil {
			return nil, err
		}
		m["key"] = k
	}
	if c.Value != nil {
		v, err := EncodeExpr(c.Value)
		if err != nil {
			return nil, err
		}
		m["value"] = v
	}

	gens := make([]any, len(c.Generators))
	for i, g := range c.Generators {
		src, err := encodeSource(g.Source)
		if err != nil {
			return nil, err
		}
		gens[i] = map[string]any{"var": g.Var, "source": src}
	}
	m["generators"] = gens

	filters := make([]any, len(c.Filters))
	for i, f := range c.Filters {
		pred, err := EncodeExpr(f.Pred)
		if err != nil {
			return nil, err
		}
		filters[i] = map[string]any{"gen": f.GenIndex, "pred": pred}
	}
	m["filters"] = filters

	if c.Reduce != nil {
		m["reduce"] = map[string]any{"node": "reduce", "op": string(c.Reduce.Op)}
	}
	if c.Empty {
		m["empty"] = true
	}
	if c.Types != nil {
		types := map[string]any{
			"element_type": c.Types.ElementType,
			"int_width":    c.Types.IntWidth,
		}
		if c.Types.KeyType != "" {
			types["key_type"] = c.Types.KeyType
		}
		if c.Types.ValueType != "" {
			types["value_type"] = c.Types.ValueType
		}
		if c.Types.Fallback {
			types["fallback"] = true
		}
		m["types"] = types
	}
	return m, nil
}

// EncodeExpr converts an expression to its snapshot map shape.
func EncodeExpr(e Expr) (map[string]any, error) {
	switch x := e.(type) {
	case IntLit:
		return map[string]any{"node": "int", "value": x.Value}, nil
	case BoolLit:
		return map[string]any{"node": "bool", "value": x.Value}, nil
	case Name:
		return map[string]any{"node": "name", "ident": x.Ident}, nil
	case Unary:
		operand, err := EncodeExpr(x.Operand)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "unary", "op": string(x.Op), "operand": operand}, nil
	case Binary:
		left, err := EncodeExpr(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := EncodeExpr(x.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "binary", "op": string(x.Op), "left": left, "right": right}, nil
	case Compare:
		left, err := EncodeExpr(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := EncodeExpr(x.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "compare", "op": string(x.Op), "left": left, "right": right}, nil
	case Logic:
		left, err := EncodeExpr(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := EncodeExpr(x.Right)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "logic", "op": string(x.Op), "left": left, "right": right}, nil
	case Call:
		args := make([]any, len(x.Args))
		for i, a := range x.Args {
			enc, err := EncodeExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = enc
		}
		return map[string]any{"node": "call", "func": x.Func, "args": args}, nil
	default:
		return nil, fmt.Errorf("unsupported expression type for encoding: %T", e)
	}
}

func encodeSource(s Source) (map[string]any, error) {
	switch src := s.(type) {
	case RangeExpr:
		start, err := EncodeExpr(src.Start)
		if err != nil {
			return nil, err
		}
		stop, err := EncodeExpr(src.Stop)
		if err != nil {
			return nil, err
		}
		step, err := EncodeExpr(src.Step)
		if err != nil {
			return nil, err
		}
		return map[string]any{"node": "range", "start": start, "stop": stop, "step": step}, nil
	case OpaqueIterable:
		return map[string]any{"node": "iterable", "ident": src.Ident}, nil
	default:
		return nil, fmt.Errorf("unsupported source type for encoding: %T", s)
	}
}

// Snapshot serializes the comprehension (plus IR version) to canonical
// JSON bytes for golden-file comparison.
func Snapshot(c *Comp) ([]byte, error) {
	root, err := EncodeComp(c)
	if err != nil {
		return nil, err
	}
	envelope := map[string]any{
		"ir_version": IRVersion,
		"root":       root,
	}
	return MarshalCanonical(envelope)
}
