package errors

// Shape is the logical kind of a source value, reported by WrongShape.
type Shape uint8

const (
	ShapeStruct Shape = iota
	ShapeTuple
	ShapeVariant
	ShapeArray
	ShapeBitSequence
	ShapeBool
	ShapeChar
	ShapeStr
	ShapeNumber
)

var shapeNames = [...]string{
	ShapeStruct:      "struct",
	ShapeTuple:       "tuple",
	ShapeVariant:     "variant",
	ShapeArray:       "array",
	ShapeBitSequence: "bit sequence",
	ShapeBool:        "bool",
	ShapeChar:        "char",
	ShapeStr:         "str",
	ShapeNumber:      "number",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "unknown"
}
