//go:build linux

package render

import (
	"reflect"
	"testing"

	"github.com/jezek/xgb/xproto"
)

func TestChunkAtoms(t *testing.T) {
	tests := []struct {
		in   []string
		want [][]string
	}{
		{nil, nil},
		{[]string{"a"}, [][]string{{"a"}}},
		{[]string{"a", "b"}, [][]string{{"a", "b"}}},
		{[]string{"a", "b", "c", "d", "e"}, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}},
	}
	for _, tt := range tests {
		if got := chunkAtoms(tt.in, netWMStateAtomsPerMsg); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("chunkAtoms(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWindowHintApplierClose(t *testing.T) {
	applier := &WindowHintApplier{atoms: map[string]xproto.Atom{"X": 1}}
	applier.Close()
	applier.Close()
	if applier.conn != nil {
		t.Error("conn not cleared")
	}
	if len(applier.atoms) != 0 {
		t.Error("atom cache not reset")
	}
}
