package smtpipe

import (
	"errors"
	"testing"
)

func TestLookupLogic(t *testing.T) {
	l, err := LookupLogic("QF_LIA")
	if isErr(t, err) {
		return
	}
	if !l.Ints || !l.Linear || l.BitVectors {
		t.Errorf("unexpected %+v", l)
	}
	if !l.AdmitsSort(IntSort) || l.AdmitsSort(BitVecSort(8)) || !l.AdmitsSort(BoolSort) {
		t.Error("QF_LIA admits Bool and Int only")
	}

	var u *UnsupportedError
	if _, err := LookupLogic("QF_LRA"); !errors.As(err, &u) {
		t.Errorf("QF_LRA should be unsupported, got %v", err)
	}
	if _, err := LookupLogic("QF_WHATEVER"); err == nil || errors.As(err, &u) {
		t.Errorf("unknown logics should be plain errors, got %v", err)
	}

	all, _ := LookupLogic("ALL")
	if !all.AdmitsSort(BitVecSort(1)) || !all.AdmitsSort(IntSort) || all.Linear {
		t.Errorf("unexpected %+v", all)
	}
}
