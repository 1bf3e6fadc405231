package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies helper key stability; key drift would break log ingestion schemas.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attr    slog.Attr
	}{
		{"DocID", KeyDocID, DocID("sycl/memory")},
		{"Sidebar", KeySidebar, Sidebar("tutorialSidebar")},
		{"BuildID", KeyBuildID, BuildID("b1")},
		{"Generation", KeyGeneration, Generation(3)},
		{"DurationMS", KeyDurationMS, DurationMS(1.5)},
		{"Path", KeyPath, Path("/tmp/x")},
		{"File", KeyFile, File("intro.md")},
		{"Count", KeyCount, Count(2)},
		{"Addr", KeyAddr, Addr(":8080")},
		{"Method", KeyMethod, Method("GET")},
		{"Status", KeyStatus, Status(404)},
		{"Op", KeyOp, Op("neighbors")},
		{"Error", KeyError, Error(errors.New("x"))},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
	}
}

func TestErrorNil(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("expected empty error value, got %q", got)
	}
}
