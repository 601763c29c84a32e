package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row not found")
	err := Wrap(CodeNotFound, cause, "payment intent missing")

	if !stdErrors.Is(err, cause) {
		t.Fatal("wrapped error should match its cause via errors.Is")
	}
	if As(err).Code() != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", As(err).Code())
	}
}

func TestAsThroughFmtWrap(t *testing.T) {
	inner := New(CodeStateConflict, "cannot refund an uncaptured intent")
	outer := fmt.Errorf("refund: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error through fmt wrapping")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %s", typed.Code())
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NO_SUCH_CODE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown codes should map to 500, got %d", meta.HTTPStatus)
	}
}

func TestMetadataStatuses(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:        http.StatusBadRequest,
		CodeUnauthorized:      http.StatusUnauthorized,
		CodeNotFound:          http.StatusNotFound,
		CodeStateConflict:     http.StatusUnprocessableEntity,
		CodeProcessorRejected: http.StatusBadGateway,
		CodeDependency:        http.StatusServiceUnavailable,
	}
	for code, want := range cases {
		if got := MetadataFor(code).HTTPStatus; got != want {
			t.Fatalf("%s: expected %d, got %d", code, want, got)
		}
	}
}

func TestDumpChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("dial tcp: refused"), "stripe call failed")
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected DEPENDENCY_ERROR, got %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected full chain, got %v", dump.Chain)
	}
}
