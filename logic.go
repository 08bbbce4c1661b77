package smtpipe

import "fmt"

// Logic describes which theories and term shapes a logic admits.
type Logic struct {
	Name       string
	Ints       bool
	BitVectors bool
	// Linear restricts integer multiplication to products with a literal operand.
	Linear bool
	// DifferenceLogic is recorded for reporting; it is checked like Linear.
	DifferenceLogic bool
}

var supportedLogics = map[string]Logic{
	"ALL":    {Name: "ALL", Ints: true, BitVectors: true},
	"QF_LIA": {Name: "QF_LIA", Ints: true, Linear: true},
	"QF_NIA": {Name: "QF_NIA", Ints: true},
	"QF_IDL": {Name: "QF_IDL", Ints: true, Linear: true, DifferenceLogic: true},
	"QF_BV":  {Name: "QF_BV", BitVectors: true},
	"QF_UF":  {Name: "QF_UF"},
}

// knownUnsupportedLogics are standard logics whose theories this engine does not handle.
var knownUnsupportedLogics = map[string]bool{
	"QF_LRA": true, "QF_NRA": true, "QF_LIRA": true, "LIA": true, "LRA": true, "NIA": true,
	"QF_ABV": true, "QF_AUFBV": true, "QF_UFBV": true, "QF_AX": true, "QF_AUFLIA": true,
	"QF_UFLIA": true, "QF_UFLRA": true, "QF_S": true, "QF_FP": true, "UFLIA": true, "AUFLIRA": true,
}

// LookupLogic returns the description of a logic name.
func LookupLogic(name string) (Logic, error) {
	if l, ok := supportedLogics[name]; ok {
		return l, nil
	}
	if knownUnsupportedLogics[name] {
		return Logic{}, &UnsupportedError{What: fmt.Sprintf("logic %s", name)}
	}
	return Logic{}, fmt.Errorf("unknown logic %s", name)
}

// AdmitsSort reports whether symbols of sort s may be declared under l.
func (l Logic) AdmitsSort(s Sort) bool {
	switch s.Kind {
	case SORT_BOOL:
		return true
	case SORT_INT:
		return l.Ints
	case SORT_BITVEC:
		return l.BitVectors
	}
	return false
}
