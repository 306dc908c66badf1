// Package extract locates a single representative text string inside the
// untyped, possibly nested output value of a completed prediction.
//
// Replicate models return output in wildly different shapes: a plain string,
// a growing list of incremental chunks, or an object keyed by model-specific
// field names. The traversal order here is a compatibility contract: lists
// are scanned newest-first, and objects are probed with a fixed priority key
// list before falling back to a scan in key insertion order.
package extract

import (
	"strconv"
	"strings"
)

// priorityKeys are probed on every mapping, in this exact order, before any
// fallback scan. Changing the list or its order changes which text wins for
// existing response shapes.
var priorityKeys = []string{"generated_text", "text", "content", "output", "caption"}

// Text returns the most plausible text payload inside v.
//
// The boolean reports whether any value was found at all; a string node that
// trims to "" is found-but-empty, which containers treat as no match. Null
// is the only absent scalar.
func Text(v Value) (string, bool) {
	switch v.Kind {
	case KindNull:
		return "", false

	case KindString:
		return strings.TrimSpace(v.Str), true

	case KindNumber:
		return v.Num, true

	case KindBool:
		return strconv.FormatBool(v.Boolean), true

	case KindSequence:
		// Newest-last convention: generation APIs append incremental chunks,
		// so the most complete result sits at the end.
		for i := len(v.Seq) - 1; i >= 0; i-- {
			if t, ok := Text(v.Seq[i]); ok && t != "" {
				return t, true
			}
		}
		return "", false

	case KindMapping:
		for _, key := range priorityKeys {
			child, ok := v.Get(key)
			if !ok {
				continue
			}
			if t, ok := Text(child); ok && t != "" {
				return t, true
			}
		}
		for _, e := range v.Entries {
			if t, ok := Text(e.Value); ok && t != "" {
				return t, true
			}
		}
		return "", false

	default:
		// Unrecognized node: its verbatim text is better than nothing.
		return v.Raw, true
	}
}
