package structures

import (
	"encoding/binary"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/gigaHours/madmax-gsrc-editor/internal/hashes"
)

// Display renders a Data record's value bytes as the canonical
// display string for its type. Unknown types and bytes that do not
// fit the declared type degrade to the hex fallback; Display never
// fails.
func Display(d *Data, order binary.ByteOrder) string {
	return DisplayTyped(hashes.Resolve(d.TypeHash), d.Value, order)
}

// DisplayTyped renders value bytes under the given resolved type
// name, using the file's byte order for multi-byte values.
func DisplayTyped(typeName string, value []byte, order binary.ByteOrder) string {
	switch typeName {
	case "bool":
		if len(value) < 1 {
			return hexFallback(value)
		}
		if value[0] != 0 {
			return "true"
		}
		return "false"

	case "int", "enum":
		if len(value) < 4 {
			return hexFallback(value)
		}
		return fmt.Sprintf("%d", int32(order.Uint32(value)))

	case "uint32":
		if len(value) < 4 {
			return hexFallback(value)
		}
		v := order.Uint32(value)
		if name, ok := hashes.Resolved(v); ok {
			return fmt.Sprintf("%d (%s)", v, name)
		}
		return fmt.Sprintf("%d", v)

	case "int64":
		if len(value) < 8 {
			return hexFallback(value)
		}
		return fmt.Sprintf("%d", int64(order.Uint64(value)))

	case "uint64":
		if len(value) < 8 {
			return hexFallback(value)
		}
		return fmt.Sprintf("%d", order.Uint64(value))

	case "float":
		if len(value) < 4 {
			return hexFallback(value)
		}
		return fmt.Sprintf("%.4f", math.Float32frombits(order.Uint32(value)))

	case "vector":
		if len(value) < 16 {
			return hexFallback(value)
		}
		return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)",
			math.Float32frombits(order.Uint32(value[0:])),
			math.Float32frombits(order.Uint32(value[4:])),
			math.Float32frombits(order.Uint32(value[8:])),
			math.Float32frombits(order.Uint32(value[12:])))

	case "string", "string_ptr":
		return string(value)

	default:
		return hexFallback(value)
	}
}

// hexFallback renders up to 16 bytes as space-separated hex, with an
// ellipsis when more follow.
func hexFallback(value []byte) string {
	if len(value) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	n := len(value)
	if n > 16 {
		n = 16
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", value[i])
	}
	if len(value) > 16 {
		sb.WriteString(" ...")
	}
	return sb.String()
}

// Variable-producing node classes encode their payload through the
// graph's global blob rather than inline.
var variableClassRe = regexp.MustCompile(`^(Variable|ExternalVariable|GlobalVariable)`)

// IsVariableClass reports whether className names a variable node.
func IsVariableClass(className string) bool {
	return variableClassRe.MatchString(className)
}

// variableKinds maps to the decoded-value shape of a variable class,
// derived from the class name after stripping the External/Global
// prefix. First matching prefix wins.
var variableKinds = []struct {
	prefix string
	kind   string
}{
	{"VariableFloat", "float"},
	{"VariableInt", "int"},
	{"VariableBool", "bool"},
	{"VariableUint32", "uint32"},
	{"VariableUint64", "uint64"},
	{"VariableObject", "uint64"},
	{"VariableFile", "uint64"},
	{"VariableGraphFile", "uint64"},
	{"VariableGlobalRef", "uint64"},
	{"VariableString", "stringhash"},
	{"VariableHash", "stringhash"},
	{"VariableVector", "vector"},
	{"VariableTransform", "vector"},
	{"VariableEnum", "enum"},
	{"VariableEventSend", "event"},
	{"VariableEventReceive", "event"},
}

// VariableValueKind maps a variable class name to the shape of the
// value stored behind its global-blob reference.
func VariableValueKind(className string) string {
	name := className
	name = strings.TrimPrefix(name, "External")
	name = strings.TrimPrefix(name, "Global")
	for _, vk := range variableKinds {
		if strings.HasPrefix(name, vk.prefix) {
			return vk.kind
		}
	}
	return "uint32"
}

// DerefVariableName resolves a variable node's display name: the Data
// record's first 4 value bytes are an offset into the global blob,
// where the variable's identity hash lives.
func DerefVariableName(d *Data, global []byte, order binary.ByteOrder) string {
	off, ok := blobOffset(d, global, order)
	if !ok {
		return "??"
	}
	return hashes.Resolve(order.Uint32(global[off:]))
}

// DerefVariableValue resolves a variable node's value through the
// global blob, decoding the bytes at the referenced offset according
// to the class's value kind. Falls back to the raw u32 in hex when
// the blob is too short for the full value, and to "??" when even
// that cannot be read.
func DerefVariableValue(d *Data, global []byte, order binary.ByteOrder, className string) string {
	off, ok := blobOffset(d, global, order)
	if !ok {
		return "??"
	}

	kind := VariableValueKind(className)
	switch kind {
	case "event":
		return "(event)"

	case "bool":
		return DisplayTyped("bool", global[off:off+1], order)

	case "float", "int", "uint32", "enum":
		if uint64(off)+4 <= uint64(len(global)) {
			return DisplayTyped(kind, global[off:off+4], order)
		}

	case "uint64":
		if uint64(off)+8 <= uint64(len(global)) {
			return DisplayTyped("uint64", global[off:off+8], order)
		}

	case "stringhash":
		if uint64(off)+4 <= uint64(len(global)) {
			return hashes.Resolve(order.Uint32(global[off:]))
		}

	case "vector":
		if uint64(off)+16 <= uint64(len(global)) {
			return DisplayTyped("vector", global[off:off+16], order)
		}
	}

	// Blob too short for the typed width; show what is there.
	if uint64(off)+4 <= uint64(len(global)) {
		return fmt.Sprintf("0x%08X", order.Uint32(global[off:]))
	}
	return "??"
}

// blobOffset reads the record's 4-byte value as an offset into the
// global blob and checks that at least one more u32 is readable
// there.
func blobOffset(d *Data, global []byte, order binary.ByteOrder) (uint32, bool) {
	if len(d.Value) < 4 {
		return 0, false
	}
	off := order.Uint32(d.Value)
	if uint64(off)+4 > uint64(len(global)) {
		return 0, false
	}
	return off, true
}
