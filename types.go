package latc

// Type name constants for L's primitive types, plus the name used for
// the "global" (non-class) symbol owner throughout the SymbolTable.
// Grounded on original_source/src/runtime.py's INT/BOOL/STRING/VOID
// and GENERIC_TYPES.
const (
	TInt    = "int"
	TBool   = "boolean"
	TString = "string"
	TVoid   = "void"

	// GlobalOwner is the sentinel owner name for top-level functions
	// and the runtime library, matching spec.md §3's "NONE / global"
	// sentinel.
	GlobalOwner = ""
)

// Runtime function signatures, fixed by spec.md §3.
const (
	FnPrintInt    = "printInt"
	FnPrintString = "printString"
	FnReadInt     = "readInt"
	FnReadString  = "readString"
	FnError       = "error"
)

func isGenericType(t string) bool {
	return t == TInt || t == TBool || t == TString
}

// IsSubtype implements spec.md §4.2's `S <: T` relation. classes maps
// a class name to its parent's name (GlobalOwner for a class with no
// explicit parent, i.e. direct child of the implicit root).
func IsSubtype(classes map[string]string, s, t string) bool {
	if isGenericType(s) {
		return s == t
	}
	for cls := s; cls != ""; cls = classes[cls] {
		if cls == t {
			return true
		}
	}
	return false
}
