package hashes

import (
	"bytes"
	_ "embed"
)

// curated holds the identifiers the decoder itself depends on: pin
// category names, the primitive value type names, the variable node
// classes and their External/Global variants, and the pin and field
// names that show up in virtually every graph. These are registered
// before the bulk dictionary so they win any hash collision with it.
var curated = []string{
	// Pin categories.
	"input_pins",
	"output_pins",
	"variable_pins",

	// Primitive value types.
	"bool",
	"int",
	"uint32",
	"int64",
	"uint64",
	"float",
	"vector",
	"string",
	"string_ptr",
	"enum",

	// Variable node fields.
	"Name",
	"Value",
	"DefaultValue",

	// Variable node classes.
	"VariableFloat",
	"VariableInt",
	"VariableBool",
	"VariableUint32",
	"VariableUint64",
	"VariableString",
	"VariableStringHash",
	"VariableHash",
	"VariableVector",
	"VariableTransform",
	"VariableObject",
	"VariableEnum",
	"VariableFile",
	"VariableGraphFile",
	"VariableGlobalRef",
	"VariableEventSend",
	"VariableEventReceive",
	"ExternalVariableFloat",
	"ExternalVariableInt",
	"ExternalVariableBool",
	"ExternalVariableUint32",
	"ExternalVariableString",
	"ExternalVariableVector",
	"ExternalVariableObject",
	"GlobalVariableFloat",
	"GlobalVariableInt",
	"GlobalVariableBool",
	"GlobalVariableUint32",
	"GlobalVariableString",
	"GlobalVariableVector",

	// Common pin names.
	"in",
	"out",
	"exec",
	"done",
	"trigger",
	"result",
	"value",
	"condition",
	"true",
	"false",
	"start",
	"finish",
	"next",
	"reset",

	// Container-level names.
	"GraphScript",
	"instance",
}

//go:embed dictionary.txt
var bulkDictionary []byte

// defaultTable builds a fresh registry table from the curated list
// followed by the embedded engine dictionary, first entry winning.
func defaultTable() table {
	t := make(table, 1024)
	for _, s := range curated {
		h := Hash(s)
		if _, ok := t[h]; !ok {
			t[h] = s
		}
	}
	// The embedded dictionary is trusted content; a scan error here
	// would be a build defect, not an input condition.
	_ = mergeInto(t, bytes.NewReader(bulkDictionary))
	return t
}
