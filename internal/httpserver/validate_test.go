package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type decodeTarget struct {
	Name string `json:"name"`
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":1}`))
	var dst decodeTarget
	if err := Decode(req, &dst); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestDecode_RejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
	var dst decodeTarget
	if err := Decode(req, &dst); err == nil {
		t.Fatal("expected error for trailing JSON data")
	}
}

func TestDecode_RejectsEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	var dst decodeTarget
	if err := Decode(req, &dst); err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestDecode_AcceptsValidSingleObject(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	var dst decodeTarget
	if err := Decode(req, &dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dst.Name != "a" {
		t.Fatalf("got %q, want %q", dst.Name, "a")
	}
}

type validateTarget struct {
	Name string `json:"name" validate:"required"`
}

func TestValidate_ReportsRequiredFieldAsSnakeCaseJSONName(t *testing.T) {
	errs := Validate(&validateTarget{})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if errs[0].Field != "name" {
		t.Fatalf("got field %q, want %q", errs[0].Field, "name")
	}
}

func TestValidate_PassesValidStruct(t *testing.T) {
	if errs := Validate(&validateTarget{Name: "ok"}); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}
