package aggregate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/oranjuce/BGP-Router/internal/ipaddr"
	"github.com/oranjuce/BGP-Router/internal/route"
)

func entry(t *testing.T, network string, length uint8, attrs route.Attributes) route.Entry {
	t.Helper()
	n, err := ipaddr.Pack(network)
	if err != nil {
		t.Fatalf("Pack(%q): %v", network, err)
	}
	return route.Entry{
		Prefix:     route.Prefix{Network: n, Netmask: ipaddr.MaskFromLen(length)},
		Attributes: attrs,
	}
}

func TestRunMergesSiblings(t *testing.T) {
	attrs := route.Attributes{LocalPref: 100, SelfOrigin: true, ASPath: []int{1}, Origin: route.IGP}

	in := []route.Entry{
		entry(t, "192.168.0.0", 24, attrs),
		entry(t, "192.168.1.0", 24, attrs),
	}

	got := Run(in)

	want := []route.Entry{entry(t, "192.168.0.0", 23, attrs)}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunDoesNotMergeDifferentAttributes(t *testing.T) {
	a := route.Attributes{LocalPref: 100, Origin: route.IGP}
	b := route.Attributes{LocalPref: 200, Origin: route.IGP}

	in := []route.Entry{
		entry(t, "192.168.0.0", 24, a),
		entry(t, "192.168.1.0", 24, b),
	}

	got := Run(in)
	if len(got) != 2 {
		t.Fatalf("expected no merge across differing attributes, got %v", got)
	}
}

func TestRunDoesNotMergeDifferentLengths(t *testing.T) {
	attrs := route.Attributes{Origin: route.IGP}

	in := []route.Entry{
		entry(t, "10.0.0.0", 8, attrs),
		entry(t, "10.1.0.0", 16, attrs),
	}

	got := Run(in)
	if len(got) != 2 {
		t.Fatalf("expected no merge across differing mask lengths, got %v", got)
	}
}

func TestRunCascades(t *testing.T) {
	attrs := route.Attributes{Origin: route.IGP}

	in := []route.Entry{
		entry(t, "0.0.0.0", 9, attrs),
		entry(t, "0.128.0.0", 9, attrs),
		entry(t, "1.0.0.0", 9, attrs),
		entry(t, "1.128.0.0", 9, attrs),
	}

	got := Run(in)
	want := []route.Entry{entry(t, "0.0.0.0", 7, attrs)}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Run() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunIdempotent(t *testing.T) {
	attrs := route.Attributes{Origin: route.IGP}

	in := []route.Entry{
		entry(t, "192.168.0.0", 24, attrs),
		entry(t, "192.168.1.0", 24, attrs),
		entry(t, "10.0.0.0", 8, attrs),
	}

	once := Run(in)
	twice := Run(once)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Run() is not idempotent (-once +twice):\n%s", diff)
	}
}

func TestRunDisjointNonSiblingsUntouched(t *testing.T) {
	attrs := route.Attributes{Origin: route.IGP}

	in := []route.Entry{
		entry(t, "10.0.0.0", 8, attrs),
		entry(t, "192.168.0.0", 24, attrs),
	}

	got := Run(in)
	if len(got) != 2 {
		t.Fatalf("expected disjoint prefixes to be left alone, got %v", got)
	}
}
