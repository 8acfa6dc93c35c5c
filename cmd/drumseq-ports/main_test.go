package main

import (
	"strings"
	"testing"

	"go-drumseq/instrument"
)

func TestPingPortRejectsChannel(t *testing.T) {
	for _, c := range []uint8{0, 17} {
		err := pingPort("nowhere", c, instrument.GetKit("gm"), instrument.Kick)
		if err == nil || !strings.Contains(err.Error(), "out of range") {
			t.Fatalf("channel %d: expected range error, got %v", c, err)
		}
	}
}
