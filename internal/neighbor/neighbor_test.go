package neighbor

import (
	"testing"

	"github.com/oranjuce/BGP-Router/internal/ipaddr"
)

func TestParseDescriptor(t *testing.T) {
	port, addr, rel, err := ParseDescriptor("7000-192.0.0.2-cust")
	if err != nil {
		t.Fatalf("ParseDescriptor: %v", err)
	}
	if port != 7000 {
		t.Errorf("port = %d, want 7000", port)
	}
	want, _ := ipaddr.Pack("192.0.0.2")
	if addr != want {
		t.Errorf("address = %#x, want %#x", addr, want)
	}
	if rel != Customer {
		t.Errorf("relation = %v, want Customer", rel)
	}
}

func TestParseDescriptorRelations(t *testing.T) {
	tests := map[string]Relation{
		"1-1.2.3.4-cust": Customer,
		"1-1.2.3.4-peer": Peer,
		"1-1.2.3.4-prov": Provider,
	}
	for in, want := range tests {
		_, _, got, err := ParseDescriptor(in)
		if err != nil {
			t.Fatalf("ParseDescriptor(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseDescriptor(%q) relation = %v, want %v", in, got, want)
		}
	}
}

func TestParseDescriptorErrors(t *testing.T) {
	bad := []string{"not-a-port-1.2.3.4-cust", "7000-1.2.3.4-badrelation", "garbage", "7000-999.2.3.4-cust"}
	for _, in := range bad {
		if _, _, _, err := ParseDescriptor(in); err == nil {
			t.Errorf("ParseDescriptor(%q): expected error", in)
		}
	}
}

func TestRouterAddress(t *testing.T) {
	n := Neighbor{Address: mustPack(t, "192.0.0.2")}
	want := mustPack(t, "192.0.0.1")
	if got := n.RouterAddress(); got != want {
		t.Errorf("RouterAddress() = %s, want %s", ipaddr.Unpack(got), ipaddr.Unpack(want))
	}
}

func mustPack(t *testing.T, s string) ipaddr.Addr {
	t.Helper()
	a, err := ipaddr.Pack(s)
	if err != nil {
		t.Fatalf("Pack(%q): %v", s, err)
	}
	return a
}
