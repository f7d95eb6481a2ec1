package wire

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Envelope{
		Src:  "192.0.0.1",
		Dst:  "192.0.0.2",
		Type: "update",
		Msg:  json.RawMessage(`{"network":"10.0.0.0","netmask":"255.0.0.0"}`),
	}

	raw, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	out, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip changed the envelope (-in +out):\n%s", diff)
	}
}

func TestDecodeMalformedJSONErrors(t *testing.T) {
	if _, err := Decode([]byte(`{"src": not json`)); err == nil {
		t.Fatal("expected an error decoding malformed JSON")
	}
}

func TestUpdatePayloadFieldNames(t *testing.T) {
	p := UpdatePayload{
		Network:    "10.0.0.0",
		Netmask:    "255.0.0.0",
		LocalPref:  100,
		SelfOrigin: true,
		ASPath:     []int{1, 2},
		Origin:     "IGP",
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	for _, field := range []string{"network", "netmask", "localpref", "selfOrigin", "ASPath", "origin"} {
		if _, ok := got[field]; !ok {
			t.Errorf("expected wire field %q in marshaled UpdatePayload, got %v", field, got)
		}
	}
}
