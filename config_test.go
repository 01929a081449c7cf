package pkspawn

import "testing"

func TestClampNice(t *testing.T) {
	cases := map[int]int{
		-30: -20,
		-20: -20,
		0:   0,
		19:  19,
		30:  19,
	}
	for in, want := range cases {
		if got := clampNice(in); got != want {
			t.Fatalf("clampNice(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestStaticPriority(t *testing.T) {
	if got := StaticPriority(5).NiceValue(); got != 5 {
		t.Fatalf("StaticPriority(5).NiceValue() = %d, want 5", got)
	}
}

func TestEnvPriorityProviderDefaultKey(t *testing.T) {
	t.Setenv("PKSPAWN_BACKEND_NICE", "10")
	p := EnvPriorityProvider{}
	if got := p.NiceValue(); got != 10 {
		t.Fatalf("NiceValue() = %d, want 10", got)
	}
}

func TestEnvPriorityProviderCustomKey(t *testing.T) {
	t.Setenv("MY_NICE", "-5")
	p := EnvPriorityProvider{Key: "MY_NICE"}
	if got := p.NiceValue(); got != -5 {
		t.Fatalf("NiceValue() = %d, want -5", got)
	}
}

func TestEnvPriorityProviderInvalidFallsBackToZero(t *testing.T) {
	t.Setenv("PKSPAWN_BACKEND_NICE", "not-a-number")
	p := EnvPriorityProvider{}
	if got := p.NiceValue(); got != 0 {
		t.Fatalf("NiceValue() = %d, want 0", got)
	}
}

func TestEnvPriorityProviderAbsentFallsBackToZero(t *testing.T) {
	t.Setenv("PKSPAWN_BACKEND_NICE", "")
	p := EnvPriorityProvider{}
	if got := p.NiceValue(); got != 0 {
		t.Fatalf("NiceValue() = %d, want 0", got)
	}
}
