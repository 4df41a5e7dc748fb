package wechatpay_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
	"testing"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/wechatpay"
	"github.com/stretchr/testify/assert"
)

const testAPIv3Key = "0123456789abcdef0123456789abcdef"

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)
	return key
}

func TestSigner_AuthorizationHeader(t *testing.T) {
	key := generateKey(t)
	signer := wechatpay.NewSigner("mch123", "serial-1", key)

	header, err := signer.AuthorizationHeader("POST", "/v3/pay/transactions/native", []byte(`{"a":1}`))

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(header, `WECHATPAY2-SHA256-RSA2048 mchid="mch123"`))
	assert.Contains(t, header, `serial_no="serial-1"`)
	assert.Contains(t, header, "signature=")
	assert.Contains(t, header, "timestamp=")
	assert.Contains(t, header, "nonce_str=")
}

func TestVerifier_Verify(t *testing.T) {
	key := generateKey(t)
	verifier := wechatpay.NewVerifier(&key.PublicKey)

	sign := func(timestamp, nonce string, body []byte) string {
		message := fmt.Sprintf("%s\n%s\n%s\n", timestamp, nonce, body)
		digest := sha256.Sum256([]byte(message))
		sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
		assert.NoError(t, err)
		return base64.StdEncoding.EncodeToString(sig)
	}

	body := []byte(`{"id":"evt-1"}`)

	t.Run("valid signature passes", func(t *testing.T) {
		signature := sign("1700000000", "nonce-1", body)
		assert.NoError(t, verifier.Verify("1700000000", "nonce-1", body, signature))
	})

	t.Run("tampered body fails", func(t *testing.T) {
		signature := sign("1700000000", "nonce-1", body)
		err := verifier.Verify("1700000000", "nonce-1", []byte(`{"id":"evt-2"}`), signature)
		assert.ErrorIs(t, err, wechatpay.ErrSignatureInvalid)
	})

	t.Run("garbage signature fails", func(t *testing.T) {
		err := verifier.Verify("1700000000", "nonce-1", body, "not-base64!!")
		assert.ErrorIs(t, err, wechatpay.ErrSignatureInvalid)
	})
}

func TestResourceEncryption(t *testing.T) {
	plaintext := []byte(`{"out_trade_no":"QS1","trade_state":"SUCCESS"}`)
	nonce := "123456789012"
	associatedData := "transaction"

	t.Run("roundtrip", func(t *testing.T) {
		ciphertext, err := wechatpay.EncryptResource(testAPIv3Key, associatedData, nonce, plaintext)
		assert.NoError(t, err)

		decrypted, err := wechatpay.DecryptResource(testAPIv3Key, associatedData, nonce, ciphertext)
		assert.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("wrong key fails", func(t *testing.T) {
		ciphertext, err := wechatpay.EncryptResource(testAPIv3Key, associatedData, nonce, plaintext)
		assert.NoError(t, err)

		otherKey := "ffffffffffffffffffffffffffffffff"
		_, err = wechatpay.DecryptResource(otherKey, associatedData, nonce, ciphertext)
		assert.ErrorIs(t, err, wechatpay.ErrDecryptFailed)
	})

	t.Run("tampered associated data fails", func(t *testing.T) {
		ciphertext, err := wechatpay.EncryptResource(testAPIv3Key, associatedData, nonce, plaintext)
		assert.NoError(t, err)

		_, err = wechatpay.DecryptResource(testAPIv3Key, "refund", nonce, ciphertext)
		assert.ErrorIs(t, err, wechatpay.ErrDecryptFailed)
	})

	t.Run("bad nonce size fails", func(t *testing.T) {
		ciphertext, err := wechatpay.EncryptResource(testAPIv3Key, associatedData, nonce, plaintext)
		assert.NoError(t, err)

		_, err = wechatpay.DecryptResource(testAPIv3Key, associatedData, "short", ciphertext)
		assert.ErrorIs(t, err, wechatpay.ErrDecryptFailed)
	})
}

func TestLoadKeys(t *testing.T) {
	key := generateKey(t)

	t.Run("pkcs8 private key", func(t *testing.T) {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		assert.NoError(t, err)
		pemData := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

		loaded, err := wechatpay.LoadPrivateKey(string(pemData))
		assert.NoError(t, err)
		assert.True(t, key.Equal(loaded))
	})

	t.Run("pkcs1 private key", func(t *testing.T) {
		pemData := pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})

		loaded, err := wechatpay.LoadPrivateKey(string(pemData))
		assert.NoError(t, err)
		assert.True(t, key.Equal(loaded))
	})

	t.Run("pkix public key", func(t *testing.T) {
		der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		assert.NoError(t, err)
		pemData := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

		loaded, err := wechatpay.LoadPublicKey(string(pemData))
		assert.NoError(t, err)
		assert.True(t, key.PublicKey.Equal(loaded))
	})

	t.Run("missing pem block", func(t *testing.T) {
		_, err := wechatpay.LoadPrivateKey("not a key")
		assert.Error(t, err)
	})
}
