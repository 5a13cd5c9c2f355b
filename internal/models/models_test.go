package models

import "testing"

func TestDocumentAppendPreservesOrder(t *testing.T) {
	d := NewDocument("first segment")
	d.Append("second segment")
	d.Append("third segment")

	want := "first segment\n\nsecond segment\n\nthird segment"
	if got := d.Text(); got != want {
		t.Fatalf("Text = %q, want %q", got, want)
	}
	if d.Len() != 3 {
		t.Fatalf("Len = %d, want 3", d.Len())
	}
}

func TestDocumentDropsEmptySegments(t *testing.T) {
	d := NewDocument("")
	d.Append("  \n\t ")
	if d.Len() != 0 {
		t.Fatalf("expected empty document, got %d segments", d.Len())
	}
	if d.Text() != "" {
		t.Fatalf("expected empty text, got %q", d.Text())
	}
}

func TestDocumentWordCountIsDerived(t *testing.T) {
	d := NewDocument("one two")
	if d.WordCount() != 2 {
		t.Fatalf("WordCount = %d, want 2", d.WordCount())
	}
	d.Append("three four five")
	if d.WordCount() != 5 {
		t.Fatalf("WordCount after append = %d, want 5", d.WordCount())
	}
}

func TestDocumentSegmentsReturnsCopy(t *testing.T) {
	d := NewDocument("seed")
	segs := d.Segments()
	segs[0] = "mutated"
	if d.Text() != "seed" {
		t.Fatalf("mutating the returned slice changed the document: %q", d.Text())
	}
}
