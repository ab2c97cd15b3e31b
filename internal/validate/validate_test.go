package validate

import (
	"errors"
	"testing"
)

func TestStringRules(t *testing.T) {
	tests := []struct {
		name    string
		rule    StringRule
		value   string
		wantErr bool
	}{
		{"required rejects empty", Required(), "", true},
		{"required rejects whitespace", Required(), "   ", true},
		{"required accepts value", Required(), "alice", false},
		{"minlength rejects short", MinLength(3), "ab", true},
		{"minlength accepts exact", MinLength(3), "abc", false},
		{"minlength skips empty", MinLength(3), "", false},
		{"minlength counts runes", MinLength(3), "日本語", false},
		{"maxlength rejects long", MaxLength(3), "abcd", true},
		{"maxlength accepts exact", MaxLength(3), "abc", false},
		{"email accepts plain address", Email(), "a@b.co", false},
		{"email rejects missing at", Email(), "nope", true},
		{"email rejects missing domain dot", Email(), "a@b", true},
		{"email skips empty", Email(), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.rule(tt.value)
			if (msg != "") != tt.wantErr {
				t.Fatalf("rule(%q) = %q, wantErr=%v", tt.value, msg, tt.wantErr)
			}
		})
	}
}

func TestIntRules(t *testing.T) {
	if msg := Min(0)(-1); msg == "" {
		t.Fatal("Min(0) accepted -1")
	}
	if msg := Min(0)(0); msg != "" {
		t.Fatalf("Min(0) rejected 0: %s", msg)
	}
	if msg := Max(10)(11); msg == "" {
		t.Fatal("Max(10) accepted 11")
	}
	if msg := Max(10)(10); msg != "" {
		t.Fatalf("Max(10) rejected 10: %s", msg)
	}
}

func TestValidatorAggregatesFieldErrors(t *testing.T) {
	v := New()
	v.String("username", "", Required(), MinLength(3))
	v.String("email", "bogus", Email())
	v.Int("price_cents", -5, Min(0))
	v.String("name", "ok", Required())

	err := v.Err()
	if err == nil {
		t.Fatal("expected validation error")
	}

	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected validate.Errors, got %T", err)
	}
	if len(errs) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(errs), errs)
	}

	fields := errs.Fields()
	for _, field := range []string{"username", "email", "price_cents"} {
		if _, ok := fields[field]; !ok {
			t.Fatalf("missing field error for %s: %v", field, fields)
		}
	}
	if _, ok := fields["name"]; ok {
		t.Fatal("valid field reported as error")
	}
}

func TestValidatorStopsAtFirstRulePerField(t *testing.T) {
	v := New()
	v.String("password", "", Required(), MinLength(8))
	var errs Errors
	if !errors.As(v.Err(), &errs) {
		t.Fatalf("expected validate.Errors, got %v", v.Err())
	}
	if len(errs) != 1 {
		t.Fatalf("expected single violation for one field, got %d", len(errs))
	}
}

func TestValidatorNoErrors(t *testing.T) {
	v := New()
	v.String("username", "alice", Required(), MinLength(3), MaxLength(32))
	v.String("email", "alice@example.com", Required(), Email())
	if err := v.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
