package contracts_test

import (
	"testing"

	"marketpaline/internal/contracts"
)

func TestValidate_Listing(t *testing.T) {
	ok := map[string]any{"id": 7.0, "title": "House", "price": 500000.0, "images": []any{"a.jpg"}}
	if err := contracts.Validate(contracts.Listing, ok); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	alias := map[string]any{"id": "7", "name": "House"}
	if err := contracts.Validate(contracts.Listing, alias); err != nil {
		t.Fatalf("alias title should pass: %v", err)
	}
	if err := contracts.Validate(contracts.Listing, map[string]any{"title": "no id"}); err == nil {
		t.Fatalf("expected missing id to fail")
	}
	if err := contracts.Validate(contracts.Listing, map[string]any{"id": 1.0}); err == nil {
		t.Fatalf("expected missing title to fail")
	}
	if err := contracts.Validate(contracts.Listing, map[string]any{"id": 1.0, "title": "x", "email": "nope"}); err == nil {
		t.Fatalf("expected bad email to fail")
	}
}

func TestValidate_Review(t *testing.T) {
	if err := contracts.Validate(contracts.Review, map[string]any{"stars": 4.0, "text": "ok"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := contracts.Validate(contracts.Review, map[string]any{"text": "no rating"}); err == nil {
		t.Fatalf("expected missing rating to fail")
	}
	if err := contracts.Validate("nope", map[string]any{}); err == nil {
		t.Fatalf("expected unknown schema error")
	}
}
