package pkspawn

import "testing"

func TestDecideReuseSameArgv0AndEnv(t *testing.T) {
	live := InvocationDescriptor{Argv: []string{"pk-dispatch", "install"}, Envp: []string{"A=1"}}
	next := InvocationDescriptor{Argv: []string{"pk-dispatch", "remove"}, Envp: []string{"A=1"}}
	if got := decideReuse(next, live); got != decisionReuse {
		t.Fatalf("expected reuse, got %v", got)
	}
}

func TestDecideReuseDifferentArgv0Rotates(t *testing.T) {
	live := InvocationDescriptor{Argv: []string{"pk-dispatch-a"}, Envp: nil}
	next := InvocationDescriptor{Argv: []string{"pk-dispatch-b"}, Envp: nil}
	if got := decideReuse(next, live); got != decisionRotate {
		t.Fatalf("expected rotate, got %v", got)
	}
}

func TestDecideReuseDifferentEnvRotates(t *testing.T) {
	live := InvocationDescriptor{Argv: []string{"pk-dispatch"}, Envp: []string{"A=1"}}
	next := InvocationDescriptor{Argv: []string{"pk-dispatch"}, Envp: []string{"A=2"}}
	if got := decideReuse(next, live); got != decisionRotate {
		t.Fatalf("expected rotate on env change, got %v", got)
	}
}

func TestDecideReuseEnvOrderMatters(t *testing.T) {
	live := InvocationDescriptor{Argv: []string{"pk-dispatch"}, Envp: []string{"A=1", "B=2"}}
	next := InvocationDescriptor{Argv: []string{"pk-dispatch"}, Envp: []string{"B=2", "A=1"}}
	if got := decideReuse(next, live); got != decisionRotate {
		t.Fatalf("expected rotate on reordered env, got %v", got)
	}
}

func TestDecideReuseEmptyArgvRotates(t *testing.T) {
	live := InvocationDescriptor{Argv: nil}
	next := InvocationDescriptor{Argv: []string{"pk-dispatch"}}
	if got := decideReuse(next, live); got != decisionRotate {
		t.Fatalf("expected rotate when live argv is empty, got %v", got)
	}
}

func TestEnvpEqual(t *testing.T) {
	if !envpEqual(nil, nil) {
		t.Fatal("nil slices should compare equal")
	}
	if !envpEqual([]string{"A=1"}, []string{"A=1"}) {
		t.Fatal("identical single-element slices should compare equal")
	}
	if envpEqual([]string{"A=1"}, []string{"A=1", "B=2"}) {
		t.Fatal("different lengths should not compare equal")
	}
}

func TestRequestLine(t *testing.T) {
	cases := []struct {
		argv []string
		want string
	}{
		{argv: []string{"pk-dispatch"}, want: ""},
		{argv: []string{"pk-dispatch", "install"}, want: "install"},
		{argv: []string{"pk-dispatch", "install", "vim"}, want: "install\tvim"},
		{argv: nil, want: ""},
	}
	for _, c := range cases {
		if got := requestLine(c.argv); got != c.want {
			t.Fatalf("requestLine(%v) = %q, want %q", c.argv, got, c.want)
		}
	}
}
