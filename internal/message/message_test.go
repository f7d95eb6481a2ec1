package message

import (
	"encoding/json"
	"testing"

	"github.com/oranjuce/BGP-Router/internal/ipaddr"
	"github.com/oranjuce/BGP-Router/internal/route"
	"github.com/oranjuce/BGP-Router/internal/wire"
)

func TestDecodeUpdate(t *testing.T) {
	env := wire.Envelope{
		Src:  "192.0.0.2",
		Dst:  "192.0.0.1",
		Type: "update",
		Msg:  json.RawMessage(`{"network":"192.168.0.0","netmask":"255.255.0.0","localpref":100,"selfOrigin":true,"ASPath":[1],"origin":"IGP"}`),
	}

	m, err := Decode(env)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	upd, ok := m.(Update)
	if !ok {
		t.Fatalf("Decode returned %T, want Update", m)
	}

	want, _ := ipaddr.Pack("192.168.0.0")
	if upd.Entry.Prefix.Network != want {
		t.Errorf("network = %#x, want %#x", upd.Entry.Prefix.Network, want)
	}
	if upd.Entry.Attributes.LocalPref != 100 || !upd.Entry.Attributes.SelfOrigin {
		t.Errorf("attributes decoded incorrectly: %+v", upd.Entry.Attributes)
	}
	if upd.Entry.Attributes.Origin != route.IGP {
		t.Errorf("origin = %v, want IGP", upd.Entry.Attributes.Origin)
	}
}

func TestDecodeWithdraw(t *testing.T) {
	env := wire.Envelope{
		Src: "192.0.0.2", Dst: "192.0.0.1", Type: "withdraw",
		Msg: json.RawMessage(`[{"network":"192.168.1.0","netmask":"255.255.255.0"}]`),
	}

	m, err := Decode(env)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	wd, ok := m.(Withdraw)
	if !ok {
		t.Fatalf("Decode returned %T, want Withdraw", m)
	}
	if len(wd.Prefixes) != 1 {
		t.Fatalf("expected 1 victim, got %d", len(wd.Prefixes))
	}
}

func TestDecodeUnknownType(t *testing.T) {
	env := wire.Envelope{Src: "1.2.3.4", Dst: "1.2.3.1", Type: "bogus", Msg: json.RawMessage(`{}`)}
	if _, err := Decode(env); err == nil {
		t.Errorf("expected an error for an unknown message type")
	}
}

func TestDecodeMalformedPayload(t *testing.T) {
	env := wire.Envelope{Src: "1.2.3.4", Dst: "1.2.3.1", Type: "update", Msg: json.RawMessage(`not json`)}
	if _, err := Decode(env); err == nil {
		t.Errorf("expected an error for a malformed update payload")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src, _ := ipaddr.Pack("192.0.0.2")
	dst, _ := ipaddr.Pack("192.0.0.1")

	original := Update{
		base: base{Src: src, Dst: dst},
		Entry: route.Entry{
			Prefix:     route.Prefix{Network: mustPack(t, "10.0.0.0"), Netmask: mustPack(t, "255.0.0.0")},
			Attributes: route.Attributes{LocalPref: 100, ASPath: []int{1, 2}, Origin: route.EGP},
			Peer:       src,
		},
	}

	env, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(env)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got, ok := decoded.(Update)
	if !ok {
		t.Fatalf("round trip returned %T, want Update", decoded)
	}
	if got.Entry.Prefix != original.Entry.Prefix {
		t.Errorf("prefix round trip: got %+v, want %+v", got.Entry.Prefix, original.Entry.Prefix)
	}
	if !got.Entry.Attributes.Equal(original.Entry.Attributes) {
		t.Errorf("attributes round trip: got %+v, want %+v", got.Entry.Attributes, original.Entry.Attributes)
	}
}

func TestEncodeData(t *testing.T) {
	src, _ := ipaddr.Pack("192.0.0.2")
	dst, _ := ipaddr.Pack("192.0.0.1")

	d := Data{base: base{Src: src, Dst: dst}, Payload: json.RawMessage(`{"hello":"world"}`)}
	env, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(env.Msg) != `{"hello":"world"}` {
		t.Errorf("payload not preserved verbatim: %s", env.Msg)
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
