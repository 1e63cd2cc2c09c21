package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// maxKeyLength is the threshold past which the serialized parameter
// fingerprint is replaced by its hash.
const maxKeyLength = 250

// BuildKey builds a deterministic cache key from a method name and its
// parameters. Identical logical parameters always produce the identical
// key, regardless of field order: object keys are sorted recursively and
// nil-valued fields are dropped. Keys longer than 250 characters use a
// 32-hex-character hash of the serialization instead.
//
// BuildKey is pure and safe to call from concurrent callers.
func BuildKey(method string, params any) string {
	canon := canonicalize(params)
	key := method + ":" + canon
	if len(key) > maxKeyLength {
		sum := sha256.Sum256([]byte(canon))
		key = method + ":" + hex.EncodeToString(sum[:16])
	}
	return key
}

// canonicalize serializes params into a JSON-like string with recursively
// sorted object keys and nil-valued fields dropped.
func canonicalize(params any) string {
	if params == nil {
		return "{}"
	}

	// Round-trip through JSON so structs, maps, and slices all normalize
	// to the same generic shape before ordering.
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}

	var b strings.Builder
	writeCanonical(&b, v)
	return b.String()
}

func writeCanonical(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			quoted, _ := json.Marshal(k)
			b.Write(quoted)
			b.WriteByte(':')
			writeCanonical(b, t[k])
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, item)
		}
		b.WriteByte(']')
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			fmt.Fprintf(b, "%v", t)
			return
		}
		b.Write(raw)
	}
}
