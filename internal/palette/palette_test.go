package palette

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/dan-lund/diamond/internal/types"
)

func segs(speakers ...string) []types.Segment {
	out := make([]types.Segment, len(speakers))
	for i, s := range speakers {
		out[i] = types.Segment{Speaker: s, Start: float64(i), End: float64(i) + 1}
	}
	return out
}

func TestAssignSortsByLabel(t *testing.T) {
	p := Default()
	styles := p.Assign(segs("SPEAKER_01", "SPEAKER_00", "SPEAKER_01"))

	if len(styles) != 2 {
		t.Fatalf("len(styles) = %d, want 2", len(styles))
	}
	if styles["SPEAKER_00"] != p[0] {
		t.Fatalf("SPEAKER_00 = %+v, want palette[0]", styles["SPEAKER_00"])
	}
	if styles["SPEAKER_01"] != p[1] {
		t.Fatalf("SPEAKER_01 = %+v, want palette[1]", styles["SPEAKER_01"])
	}
}

func TestAssignIgnoresEncounterOrder(t *testing.T) {
	p := Default()
	a := p.Assign(segs("b", "a", "c"))
	b := p.Assign(segs("c", "b", "a", "a"))

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("reordered input changed mapping:\n%v\n%v", a, b)
	}
}

func TestAssignCyclesPastPaletteSize(t *testing.T) {
	p := Default()
	var speakers []string
	for i := 0; i < len(p)+3; i++ {
		speakers = append(speakers, fmt.Sprintf("SPEAKER_%02d", i))
	}

	styles := p.Assign(segs(speakers...))
	for k, speaker := range speakers {
		want := p[k%len(p)]
		if styles[speaker] != want {
			t.Fatalf("speaker %s = %+v, want palette[%d]", speaker, styles[speaker], k%len(p))
		}
	}
}

func TestAssignEmptyInput(t *testing.T) {
	styles := Default().Assign(nil)
	if len(styles) != 0 {
		t.Fatalf("len(styles) = %d, want 0", len(styles))
	}
}

func TestMapperRecomputesOnlyOnNewSlice(t *testing.T) {
	m := NewMapper(Default())
	list := segs("SPEAKER_00", "SPEAKER_01")

	first := m.Styles(list)
	second := m.Styles(list)
	if reflect.ValueOf(first).Pointer() != reflect.ValueOf(second).Pointer() {
		t.Fatal("same slice produced a recomputed mapping")
	}

	other := segs("SPEAKER_00", "SPEAKER_01")
	third := m.Styles(other)
	if reflect.ValueOf(first).Pointer() == reflect.ValueOf(third).Pointer() {
		t.Fatal("new slice did not trigger recomputation")
	}
	if !reflect.DeepEqual(first, third) {
		t.Fatalf("equivalent input produced different mapping:\n%v\n%v", first, third)
	}
}
