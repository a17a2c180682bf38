package payos

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// paymentRequestSignature signs a create-payment-link request.
// PayOS signs exactly these five fields in alphabetical order.
func paymentRequestSignature(checksumKey string, amount, orderCode int64, description, cancelURL, returnURL string) string {
	data := fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		amount, cancelURL, description, orderCode, returnURL)
	return sign(checksumKey, data)
}

// dataSignature signs a webhook data object as received: every field
// sorted by key, joined as key=value with &, null rendered as empty.
func dataSignature(checksumKey string, raw json.RawMessage) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return "", fmt.Errorf("decode signed data: %w", err)
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(signedValue(fields[k]))
	}
	return sign(checksumKey, b.String()), nil
}

func signedValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		if val == "null" || val == "undefined" {
			return ""
		}
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		raw, _ := json.Marshal(val)
		return string(raw)
	}
}

func sign(key, data string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func validSignature(expected, got string) bool {
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(got)))
}
