package render

import (
	"reflect"
	"testing"
)

func TestWindowHintsStateAtoms(t *testing.T) {
	tests := []struct {
		name  string
		hints WindowHints
		want  []string
	}{
		{"none", WindowHints{}, nil},
		{"taskbar only", WindowHints{SkipTaskbar: true}, []string{"_NET_WM_STATE_SKIP_TASKBAR"}},
		{"desktop widget", DesktopWidgetHints(), []string{
			"_NET_WM_STATE_SKIP_TASKBAR",
			"_NET_WM_STATE_SKIP_PAGER",
			"_NET_WM_STATE_BELOW",
			"_NET_WM_STATE_STICKY",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hints.stateAtoms(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("stateAtoms() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyWindowHintsNoop(t *testing.T) {
	if err := ApplyWindowHints(WindowHints{}); err != nil {
		t.Errorf("ApplyWindowHints(empty) = %v, want nil", err)
	}
}
