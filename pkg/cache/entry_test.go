package cache

import (
	"strings"
	"testing"

	"docuchat/pkg/types"
)

func TestEntryTextOCRPageHeaders(t *testing.T) {
	entry := NewEntry("fp", types.MethodOCR, []types.PageText{
		{Number: 1, Text: "first page"},
		{Number: 2, Failed: true},
		{Number: 3, Text: "third page"},
	})

	text := entry.Text()
	if !strings.Contains(text, "=== Page 1 ===\nfirst page") {
		t.Fatalf("missing page 1 header, got:\n%s", text)
	}
	if !strings.Contains(text, "=== Page 3 ===\nthird page") {
		t.Fatalf("missing page 3 header, got:\n%s", text)
	}
	if strings.Contains(text, "=== Page 2 ===") {
		t.Fatalf("failed page must not appear in text, got:\n%s", text)
	}
}

func TestEntryTextDirectHasNoHeaders(t *testing.T) {
	entry := NewEntry("fp", types.MethodDirect, []types.PageText{
		{Number: 1, Text: "plain"},
	})
	if strings.Contains(entry.Text(), "=== Page") {
		t.Fatal("direct extraction must not carry OCR page headers")
	}
}

func TestEntryFailedPages(t *testing.T) {
	entry := NewEntry("fp", types.MethodOCR, []types.PageText{
		{Number: 1, Text: "ok"},
		{Number: 2, Failed: true},
		{Number: 3, Failed: true},
	})

	failed := entry.FailedPages()
	if len(failed) != 2 || failed[0] != 2 || failed[1] != 3 {
		t.Fatalf("FailedPages() = %v, want [2 3]", failed)
	}
	if entry.Complete() {
		t.Fatal("entry with failed pages reported complete")
	}
}

func TestUnmarshalEntryRejectsCorruptPayload(t *testing.T) {
	if _, err := UnmarshalEntry([]byte("{not json")); err == nil {
		t.Fatal("expected error for corrupt payload")
	}
	if _, err := UnmarshalEntry([]byte(`{"pages":[]}`)); err == nil {
		t.Fatal("expected error for payload without fingerprint")
	}
}

func TestEntryMarshalRoundTrip(t *testing.T) {
	entry := NewEntry("abc123", types.MethodOCR, []types.PageText{
		{Number: 1, Text: "hello"},
		{Number: 2, Failed: true},
	})

	data, err := entry.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := UnmarshalEntry(data)
	if err != nil {
		t.Fatalf("UnmarshalEntry() error = %v", err)
	}
	if got.Fingerprint != entry.Fingerprint || got.Method != entry.Method || got.PageCount != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Pages[1].Failed {
		t.Fatal("failed page marker lost in round trip")
	}
}
