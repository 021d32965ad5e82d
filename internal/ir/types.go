// Package ir defines the canonical Workflow Intermediate Representation:
// the serializable graph of nodes, edges, and typed parameters that every
// compiler stage reads or produces.
package ir

// IRType is the closed set of scalar type tags a parameter or port can carry.
type IRType string

const (
	TypeInt    IRType = "int"
	TypeFloat  IRType = "float"
	TypeBool   IRType = "bool"
	TypeString IRType = "string"
	TypeAny    IRType = "any"
	TypeVoid   IRType = "void"
	TypeList   IRType = "list"
)

// ParseIRType maps a wire string to an IRType, defaulting to TypeAny for an
// unrecognized or empty value rather than failing — schemas loaded from
// partially-malformed data should degrade gracefully.
func ParseIRType(s string) IRType {
	switch IRType(s) {
	case TypeInt, TypeFloat, TypeBool, TypeString, TypeAny, TypeVoid, TypeList:
		return IRType(s)
	default:
		return TypeAny
	}
}

// PortDirection is a port's data-flow direction on a node.
type PortDirection string

const (
	PortInput  PortDirection = "input"
	PortOutput PortDirection = "output"
)
