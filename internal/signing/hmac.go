package signing

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "fmt"
)

// SignHMAC returns lowercase hex of HMAC-SHA256 over body. Attached as
// X-Signature on emergency reports when a device secret is enrolled.
func SignHMAC(secret string, body []byte) string {
    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write(body)
    return fmt.Sprintf("%x", mac.Sum(nil))
}

// VerifyHMAC checks a hex HMAC-SHA256 signature over the raw body.
func VerifyHMAC(secret string, body []byte, provided string) bool {
    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write(body)
    expected := mac.Sum(nil)
    b, err := hex.DecodeString(provided)
    if err != nil {
        return false
    }
    return hmac.Equal(expected, b)
}
