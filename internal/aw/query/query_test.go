package query

import (
	"encoding/json"
	"testing"
)

func TestEqual(t *testing.T) {
	got := Equal("senderID", "u1")
	want := `{"method":"equal","attribute":"senderID","values":["u1"]}`
	if got != want {
		t.Errorf("Equal() = %s, want %s", got, want)
	}
}

func TestNotEqual(t *testing.T) {
	got := NotEqual("senderID", "receiverID")
	want := `{"method":"notEqual","attribute":"senderID","values":["receiverID"]}`
	if got != want {
		t.Errorf("NotEqual() = %s, want %s", got, want)
	}
}

func TestSearch(t *testing.T) {
	got := Search("name", "alice")
	want := `{"method":"search","attribute":"name","values":["alice"]}`
	if got != want {
		t.Errorf("Search() = %s, want %s", got, want)
	}
}

func TestCompoundNesting(t *testing.T) {
	got := Or(
		And(Equal("senderID", "a"), Equal("receiverID", "b")),
		And(Equal("senderID", "b"), Equal("receiverID", "a")),
	)

	// Children must embed as objects, not as escaped strings.
	var decoded struct {
		Method string `json:"method"`
		Values []struct {
			Method string `json:"method"`
			Values []struct {
				Method    string `json:"method"`
				Attribute string `json:"attribute"`
			} `json:"values"`
		} `json:"values"`
	}
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("compound query is not valid JSON: %v", err)
	}
	if decoded.Method != "or" || len(decoded.Values) != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.Values[0].Method != "and" || len(decoded.Values[0].Values) != 2 {
		t.Errorf("first child = %+v", decoded.Values[0])
	}
	if decoded.Values[0].Values[0].Attribute != "senderID" {
		t.Errorf("leaf attribute = %q", decoded.Values[0].Values[0].Attribute)
	}
}

func TestCompoundSkipsUnparseableChildren(t *testing.T) {
	got := And("not json", Equal("a", 1))
	var decoded struct {
		Values []any `json:"values"`
	}
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Values) != 1 {
		t.Errorf("got %d children, want 1", len(decoded.Values))
	}
}
