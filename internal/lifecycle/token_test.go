package lifecycle

import "testing"

func TestTokenFirstCancelIsClean(t *testing.T) {
	tok := NewToken()
	tok.Cancel()
	if !tok.Canceled() {
		t.Fatal("expected Canceled after first Cancel")
	}
	if tok.Forced() {
		t.Fatal("expected not Forced after only one Cancel")
	}
}

func TestTokenSecondCancelForces(t *testing.T) {
	tok := NewToken()
	tok.Cancel()
	tok.Cancel()
	if !tok.Forced() {
		t.Fatal("expected Forced after second Cancel")
	}
}

func TestTokenStartsUncanceled(t *testing.T) {
	tok := NewToken()
	if tok.Canceled() || tok.Forced() {
		t.Fatal("expected fresh token to be uncanceled")
	}
}
