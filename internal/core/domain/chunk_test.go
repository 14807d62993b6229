package domain

import "testing"

func TestEffectiveMetadataOverridesWin(t *testing.T) {
	chunk := Chunk{
		AutoTags: Metadata{
			MetaExamRegion: "pre",
			MetaTopic:      "sorting",
			MetaSourceFile: "lecture3.pdf",
		},
		UserOverrides: Metadata{
			MetaExamRegion: "post",
		},
	}

	meta := chunk.EffectiveMetadata()
	if meta.Region() != RegionPost {
		t.Fatalf("expected override region post, got %q", meta.Region())
	}
	if meta.Topic() != "sorting" {
		t.Fatalf("expected auto topic kept, got %q", meta.Topic())
	}
	if meta.SourceFile() != "lecture3.pdf" {
		t.Fatalf("expected auto source_file kept, got %q", meta.SourceFile())
	}
}

func TestMergeMetadataDoesNotMutateInputs(t *testing.T) {
	auto := Metadata{MetaTopic: "graphs"}
	overrides := Metadata{MetaTopic: "trees"}

	merged := MergeMetadata(auto, overrides)
	merged["extra"] = "value"

	if auto.Topic() != "graphs" {
		t.Fatalf("auto tags mutated: %v", auto)
	}
	if overrides.Topic() != "trees" {
		t.Fatalf("overrides mutated: %v", overrides)
	}
	if merged.Topic() != "trees" {
		t.Fatalf("expected override to win, got %q", merged.Topic())
	}
}

func TestMetadataIntCoercion(t *testing.T) {
	cases := []struct {
		value any
		want  int
		ok    bool
	}{
		{7, 7, true},
		{int64(8), 8, true},
		{float64(9), 9, true},
		{"10", 10, true},
		{"ten", 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := Metadata{MetaSlideNumber: c.value}.Int(MetaSlideNumber)
		if got != c.want || ok != c.ok {
			t.Fatalf("Int(%T %v) = %d,%v; want %d,%v", c.value, c.value, got, ok, c.want, c.ok)
		}
	}
	if _, ok := (Metadata{}).Int(MetaSlideNumber); ok {
		t.Fatal("missing key should not resolve")
	}
}

func TestMetadataRegionUnknownValue(t *testing.T) {
	if r := (Metadata{MetaExamRegion: "midterm-week"}).Region(); r != "" {
		t.Fatalf("expected empty region for unknown value, got %q", r)
	}
}
