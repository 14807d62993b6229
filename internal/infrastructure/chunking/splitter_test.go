package chunking

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(100, 20)

	out := s.Split("a short note")
	if len(out) != 1 || out[0] != "a short note" {
		t.Fatalf("unexpected chunks: %v", out)
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(100, 20)
	if out := s.Split(""); out != nil {
		t.Fatalf("expected nil for empty text, got %v", out)
	}
}

func TestSplitProducesOverlappingWindows(t *testing.T) {
	s := NewSplitter(50, 10)
	text := strings.Repeat("abcdefghij", 20)

	out := s.Split(text)
	if len(out) < 4 {
		t.Fatalf("expected several chunks, got %d", len(out))
	}
	for _, chunk := range out {
		if len([]rune(chunk)) > 50 {
			t.Fatalf("chunk exceeds window: %d runes", len([]rune(chunk)))
		}
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	s := NewSplitter(60, 0)
	text := "First sentence is here. Second one follows right after it. Third continues the stream of text for a while longer."

	out := s.Split(text)
	if len(out) < 2 {
		t.Fatalf("expected multiple chunks, got %v", out)
	}
	if !strings.HasSuffix(out[0], ".") {
		t.Fatalf("expected first chunk to end at a sentence boundary, got %q", out[0])
	}
}

func TestSplitPrefersNewlineBoundary(t *testing.T) {
	s := NewSplitter(30, 0)
	text := "line one of the slide deck\nline two of the slide deck\nline three of the slide deck"

	out := s.Split(text)
	if len(out) < 2 {
		t.Fatalf("expected multiple chunks, got %v", out)
	}
	if out[0] != "line one of the slide deck" {
		t.Fatalf("expected break at newline, got %q", out[0])
	}
}

func TestSplitCoversAllContent(t *testing.T) {
	s := NewSplitter(30, 5)
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda"

	out := s.Split(text)
	joined := strings.Join(out, " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Fatalf("word %q lost during splitting: %v", word, out)
		}
	}
}

func TestNewSplitterNormalizesBadSettings(t *testing.T) {
	s := NewSplitter(0, -5)
	if s.ChunkSize <= 0 || s.Overlap < 0 {
		t.Fatalf("expected normalized settings, got %+v", s)
	}

	s = NewSplitter(100, 200)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("overlap must stay below chunk size, got %+v", s)
	}
}
