package sim

import (
	"strings"
	"testing"
)

func TestNewActionCallValidation(t *testing.T) {
	typ := &MobType{Name: "rig"}
	typ.AddReach(Reach{Name: "close", Radius1: 40, Angle1: 6.2832})

	cases := []struct {
		name    string
		action  string
		args    []string
		wantErr string
	}{
		{"unknown_action", "summon_rain", nil, "unknown action"},
		{"too_few_args", "calculate", []string{"x", "1"}, "want at least"},
		{"too_many_args", "set_timer", []string{"1", "2"}, "want 1"},
		{"const_param_rejects_var", "set_var", []string{"$dst", "5"}, "must be a constant"},
		{"bad_float_literal", "set_timer", []string{"soon"}, "not a number"},
		{"bad_int_literal", "get_random_int", []string{"n", "1", "many"}, "not an integer"},
		{"bad_enum_option", "if", []string{"$x", "~", "3"}, "unknown option"},
		{"bad_bool_literal", "set_tangible", []string{"maybe"}, "not a boolean"},
		{"unknown_reach", "set_near_reach", []string{"everywhere"}, ""},
		{"ok_variadic_empty_tail", "start_chomping", []string{"2"}, ""},
		{"ok_variadic_tail", "start_chomping", []string{"2", "mouth", "tongue"}, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			call, err := NewActionCall(typ, EventOnEnter, c.action, c.args)
			if c.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if call == nil {
					t.Fatalf("valid call should be returned")
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", c.wantErr)
			}
			if !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("error %q does not mention %q", err, c.wantErr)
			}
		})
	}
}

func TestEnumArgsCanonicalizeToIntegers(t *testing.T) {
	typ := &MobType{Name: "rig"}

	call, err := NewActionCall(typ, EventOnEnter, "if", []string{"$hp", "<", "10"})
	if err != nil {
		t.Fatalf("NewActionCall: %v", err)
	}
	if got := call.Args[1]; got != "2" {
		t.Fatalf("operator should resolve through its table, got %q", got)
	}

	call, err = NewActionCall(typ, EventOnEnter, "get_mob_info", []string{"hp", "focus", "health"})
	if err != nil {
		t.Fatalf("NewActionCall: %v", err)
	}
	if call.Args[1] != "1" {
		t.Fatalf("target enum not canonicalized, got %q", call.Args[1])
	}
}

func TestVarRefsAreStrippedAndFlagged(t *testing.T) {
	typ := &MobType{Name: "rig"}

	call, err := NewActionCall(typ, EventOnEnter, "calculate", []string{"out", "$a", "sum", "$b"})
	if err != nil {
		t.Fatalf("NewActionCall: %v", err)
	}
	if call.Args[1] != "a" || !call.ArgIsVar[1] {
		t.Fatalf("first operand should be a stripped var ref, got %q (var=%v)", call.Args[1], call.ArgIsVar[1])
	}
	if call.Args[3] != "b" || !call.ArgIsVar[3] {
		t.Fatalf("second operand should be a stripped var ref, got %q (var=%v)", call.Args[3], call.ArgIsVar[3])
	}
	if call.ArgIsVar[0] || call.ArgIsVar[2] {
		t.Fatalf("constants must not be flagged as vars")
	}
}

func TestEvalCompilesAtLoadTime(t *testing.T) {
	typ := &MobType{Name: "rig"}

	if _, err := NewActionCall(typ, EventOnEnter, "eval", []string{"out", "1 + 2 * 3"}); err != nil {
		t.Fatalf("well-formed expression should compile: %v", err)
	}
	if _, err := NewActionCall(typ, EventOnEnter, "eval", []string{"out", "1 +"}); err == nil {
		t.Fatalf("malformed expression should fail at load time")
	}
}
