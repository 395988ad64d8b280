package bridge

import (
	"errors"
	"testing"

	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

func TestDecodeSnapshot(t *testing.T) {
	h, err := DecodeSnapshot(`{"filename":"slot1","nativeHandle":"h1","hasConflict":false,"lastModifiedTimestamp":42,"playedTimeMillis":1000,"description":"desc"}`)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if h.Filename != "slot1" || h.NativeHandle != "h1" || h.LastModifiedTimestamp != 42 {
		t.Errorf("unexpected handle: %+v", h)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"empty snapshot", func() error { _, err := DecodeSnapshot(""); return err }},
		{"bad snapshot", func() error { _, err := DecodeSnapshot("{"); return err }},
		{"bad achievements", func() error { _, err := DecodeAchievements(`{"a":1}`); return err }},
		{"bad scores", func() error { _, err := DecodeScores("[1,"); return err }},
		{"bad stats", func() error { _, err := DecodeStats("nope"); return err }},
		{"bad event", func() error { _, err := DecodeEvent("[]"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			if !errors.Is(err, domain.ErrMalformedPayload) {
				t.Errorf("error = %v, want ErrMalformedPayload", err)
			}
		})
	}
}

func TestDecodeAchievements_Null(t *testing.T) {
	list, err := DecodeAchievements("null")
	if err != nil || list == nil || len(list) != 0 {
		t.Errorf("DecodeAchievements(null) = %v, %v", list, err)
	}
}

func TestDecodeScopes(t *testing.T) {
	scopes, err := DecodeScopes(`["EMAIL","OPEN_ID","PHONE"]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(scopes) != 2 || scopes[0] != domain.ScopeEmail || scopes[1] != domain.ScopeOpenID {
		t.Errorf("DecodeScopes() = %v", scopes)
	}

	if s, err := DecodeScopes(""); err != nil || s != nil {
		t.Errorf("DecodeScopes(\"\") = %v, %v", s, err)
	}
	if got := EncodeScopes([]domain.AuthScope{domain.ScopeProfile}); got != `["PROFILE"]` {
		t.Errorf("EncodeScopes() = %s", got)
	}
}

func TestEncodeIDs(t *testing.T) {
	doc := EncodeIDs([]string{"a", `quote"d`})
	ids, err := DecodeIDs(doc)
	if err != nil || len(ids) != 2 || ids[1] != `quote"d` {
		t.Errorf("ids = %v, %v (doc %s)", ids, err, doc)
	}
	if EncodeIDs(nil) != "[]" {
		t.Error("nil ids should encode as []")
	}
}

func TestDecodeClaims(t *testing.T) {
	c, err := DecodeClaims(`{"sub":"p1","email":"a@b.co","email_verified":true}`)
	if err != nil || c.Sub != "p1" || !c.EmailVerified {
		t.Errorf("DecodeClaims() = %+v, %v", c, err)
	}
	if c, err := DecodeClaims(""); c != nil || err != nil {
		t.Errorf("empty claims = %+v, %v", c, err)
	}
}
