package signing

import "testing"

func TestSignVerifyRoundTrip(t *testing.T) {
    body := []byte(`{"kind":"sos"}`)
    sig := SignHMAC("secret", body)
    if sig == "" {
        t.Fatalf("empty signature")
    }
    if !VerifyHMAC("secret", body, sig) {
        t.Fatalf("valid signature rejected")
    }
    if VerifyHMAC("other", body, sig) {
        t.Fatalf("wrong secret accepted")
    }
    if VerifyHMAC("secret", []byte(`{}`), sig) {
        t.Fatalf("tampered body accepted")
    }
    if VerifyHMAC("secret", body, "zz-not-hex") {
        t.Fatalf("garbage signature accepted")
    }
}
