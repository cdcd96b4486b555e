// Package sanitize defends tool invocations against malformed arguments.
//
// Decision-engine output is loosely typed: an argument documented as a
// scalar routinely arrives as a single-element list or as null, and strict
// typed decoding crashes on those shapes before any tool code runs. The
// defense is layered three ways so no single point of failure propagates:
//
//  1. Holster (CapabilitiesFor): forbidden tools are removed from what an
//     agent can even attempt to call, per invocation.
//  2. Self-defending tools (StringArg/IntArg/FloatArg): every tool coerces
//     each argument itself before use, trusting no caller.
//  3. Pre-validation middleware (CoerceArgs): the raw argument bundle is
//     normalized before typed decoding ever sees it.
package sanitize

import "encoding/json"

// CoerceArgs normalizes a raw tool-argument bundle before typed decoding.
// Known-problematic shapes are rewritten:
//
//   - a single-element array becomes its element (recursively), so
//     {"query": ["lilly"]} decodes into a string field
//   - null values are dropped, so typed decoding falls back to zero values
//     instead of failing on explicit nulls
//
// Anything that is not a JSON object is returned unchanged; the typed
// decoder will produce a proper error for it. Output is re-marshalled with
// sorted keys, so coercion is deterministic for identical input.
func CoerceArgs(input json.RawMessage) json.RawMessage {
	if len(input) == 0 {
		return input
	}

	var args map[string]interface{}
	if err := json.Unmarshal(input, &args); err != nil {
		return input
	}

	for key, val := range args {
		coerced := coerceValue(val)
		if coerced == nil {
			delete(args, key)
			continue
		}
		args[key] = coerced
	}

	out, err := json.Marshal(args)
	if err != nil {
		return input
	}
	return out
}

// coerceValue unwraps single-element lists until a non-list value remains.
// Multi-element lists are left alone; they may be legitimately list-typed.
func coerceValue(v interface{}) interface{} {
	for {
		list, ok := v.([]interface{})
		if !ok || len(list) != 1 {
			return v
		}
		v = list[0]
	}
}
