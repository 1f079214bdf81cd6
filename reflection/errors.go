package reflection

import (
	"fmt"
	"strings"
)

// ErrorKind classifies serialization and deserialization failures.
type ErrorKind uint8

const (
	ErrNone ErrorKind = iota
	ErrUnknown

	// ErrObjectNotArray: the in-memory value has no list adapter.
	ErrObjectNotArray
	// ErrNodeNotArray: the data node is not an array.
	ErrNodeNotArray
	// ErrArrayResizeFailed: the destination could not be sized to match.
	ErrArrayResizeFailed
	// ErrPointerUnavailable: no writable in-place view of the destination.
	ErrPointerUnavailable
	// ErrUnsupportedNodeKind: the data node kind has no mapping.
	ErrUnsupportedNodeKind
	// ErrRequiredPropertyMissing: no value for a property that must be set.
	ErrRequiredPropertyMissing
	// ErrGetValueFailed: reading a property or element failed.
	ErrGetValueFailed
	// ErrSetValueFailed: writing a property failed.
	ErrSetValueFailed
	// ErrArraySetFailed: writing an array element failed.
	ErrArraySetFailed
	// ErrTableSetFailed: writing a table entry failed.
	ErrTableSetFailed
	// ErrCustomSerializerNotFound: a custom serialize method is missing.
	ErrCustomSerializerNotFound
	// ErrCustomSerializerFailed: a custom serialize method reported failure.
	ErrCustomSerializerFailed
	// ErrSetTrueTargetMissing: IfDeserializedSetTrue names a missing property.
	ErrSetTrueTargetMissing
	// ErrSetTrueTargetNotBool: IfDeserializedSetTrue names a non-bool property.
	ErrSetTrueTargetNotBool
	// ErrSetTrueTargetSetFailed: the IfDeserializedSetTrue write failed.
	ErrSetTrueTargetSetFailed
	// ErrPostSerializeNotFound: PostSerializeType names a missing method.
	ErrPostSerializeNotFound
	// ErrPostSerializeFailed: the PostSerializeType method reported failure.
	ErrPostSerializeFailed
	// ErrTypeHasNoProperties: a type with no properties was serialized
	// without AllowNoProperties.
	ErrTypeHasNoProperties
	// ErrUndefinedProperty: the data names a property the type lacks.
	ErrUndefinedProperty
	// ErrMemberPointerNewFailed: a pointer member could not be instantiated.
	ErrMemberPointerNewFailed
	// ErrSkipIfEqualTypeMismatch: DoNotSerializeIfEqualToSimpleType holds a
	// value of the wrong type.
	ErrSkipIfEqualTypeMismatch
	// ErrSkipIfEqualComplexValue: DoNotSerializeIfEqualToSimpleType was put
	// on a complex-typed property.
	ErrSkipIfEqualComplexValue
	// ErrSkipIfDelegateNotFound: DoNotSerializeIf names a missing method.
	ErrSkipIfDelegateNotFound
	// ErrSkipIfDelegateFailed: the DoNotSerializeIf method failed to run.
	ErrSkipIfDelegateFailed
	// ErrTableKeyStringFailed: a table key has no string form.
	ErrTableKeyStringFailed
)

var errorKindMessages = map[ErrorKind]string{
	ErrNone:                     "no error",
	ErrUnknown:                  "unknown serialization failure",
	ErrObjectNotArray:           "object is not an array",
	ErrNodeNotArray:             "data node is not an array",
	ErrArrayResizeFailed:        "failed sizing destination array",
	ErrPointerUnavailable:       "failed getting a writable pointer to the destination",
	ErrUnsupportedNodeKind:      "unsupported data node kind",
	ErrRequiredPropertyMissing:  "required property has no corresponding value",
	ErrGetValueFailed:           "failed getting value",
	ErrSetValueFailed:           "failed setting value",
	ErrArraySetFailed:           "failed setting value to array",
	ErrTableSetFailed:           "failed setting value to table",
	ErrCustomSerializerNotFound: "custom serialize method not found",
	ErrCustomSerializerFailed:   "custom serialize method failed",
	ErrSetTrueTargetMissing:     "IfDeserializedSetTrue property not found",
	ErrSetTrueTargetNotBool:     "IfDeserializedSetTrue property is not a bool",
	ErrSetTrueTargetSetFailed:   "IfDeserializedSetTrue property could not be set",
	ErrPostSerializeNotFound:    "post-serialize method not found",
	ErrPostSerializeFailed:      "post-serialize method failed",
	ErrTypeHasNoProperties:      "type has no serializable properties",
	ErrUndefinedProperty:        "data contains undefined property",
	ErrMemberPointerNewFailed:   "failed instantiating instance for member pointer",
	ErrSkipIfEqualTypeMismatch:  "DoNotSerializeIfEqualToSimpleType value type mismatch",
	ErrSkipIfEqualComplexValue:  "DoNotSerializeIfEqualToSimpleType on a complex property",
	ErrSkipIfDelegateNotFound:   "DoNotSerializeIf method not found",
	ErrSkipIfDelegateFailed:     "DoNotSerializeIf method failed",
	ErrTableKeyStringFailed:     "failed getting table key string",
}

func (k ErrorKind) String() string {
	if msg, ok := errorKindMessages[k]; ok {
		return msg
	}
	return fmt.Sprintf("error kind %d", uint8(k))
}

// Error is one failure raised during serialization or deserialization,
// located by the scope path where it happened.
type Error struct {
	Kind     ErrorKind
	Path     string // scope path, e.g. "Root.Components[2].Color"
	TypeName string // type being processed, when known
	Property string // property involved, when relevant
	Detail   string // extra context, e.g. a did-you-mean hint
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Property != "" {
		fmt.Fprintf(&b, " %q", e.Property)
	}
	if e.TypeName != "" {
		fmt.Fprintf(&b, " on %s", e.TypeName)
	}
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	return b.String()
}
