package mcp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	headerAgentID   = "x-agent-id"
	headerTS        = "x-ts"
	headerSignature = "x-signature"
	headerNonce     = "x-nonce"
)

const signatureWindow = 5 * time.Minute

func canonicalString(ts string, method string, pathname string, rawBody []byte) string {
	return ts + "\n" + strings.ToUpper(method) + "\n" + pathname + "\n" + string(rawBody)
}

func canonicalStringV2(ts string, method string, pathname string, agentID string, nonce string, rawBody []byte) string {
	return ts + "\n" + strings.ToUpper(method) + "\n" + pathname + "\n" + strings.TrimSpace(agentID) + "\n" + strings.TrimSpace(nonce) + "\n" + string(rawBody)
}

func signHMAC(secret []byte, canonical string) string {
	h := hmac.New(sha256.New, secret)
	_, _ = h.Write([]byte(canonical))
	return hex.EncodeToString(h.Sum(nil))
}

// SignRequest sets the v2 auth headers on r for body. Used by clients and
// tests; the server only verifies.
func SignRequest(r *http.Request, body []byte, secret []byte, agentID, nonce string, now time.Time) {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	r.Header.Set(headerAgentID, agentID)
	r.Header.Set(headerTS, ts)
	r.Header.Set(headerNonce, nonce)
	r.Header.Set(headerSignature, signHMAC(secret, canonicalStringV2(ts, r.Method, r.URL.Path, agentID, nonce, body)))
}

type hmacVerifyResult struct {
	Actor      string
	Signature  string
	HTTPStatus int
	Message    string
}

func verifyHMAC(r *http.Request, rawBody []byte, secret []byte, now time.Time, allowLegacy bool) hmacVerifyResult {
	agentID := strings.TrimSpace(r.Header.Get(headerAgentID))
	if agentID == "" {
		return hmacVerifyResult{HTTPStatus: http.StatusUnauthorized, Message: "missing x-agent-id"}
	}
	tsStr := strings.TrimSpace(r.Header.Get(headerTS))
	if tsStr == "" {
		return hmacVerifyResult{HTTPStatus: http.StatusUnauthorized, Message: "missing x-ts"}
	}
	sigRaw := strings.TrimSpace(r.Header.Get(headerSignature))
	if sigRaw == "" {
		return hmacVerifyResult{HTTPStatus: http.StatusUnauthorized, Message: "missing x-signature"}
	}
	sig := strings.ToLower(sigRaw)
	nonce := strings.TrimSpace(r.Header.Get(headerNonce))
	if nonce == "" && !allowLegacy {
		return hmacVerifyResult{HTTPStatus: http.StatusUnauthorized, Message: "missing x-nonce"}
	}

	tsMS, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return hmacVerifyResult{HTTPStatus: http.StatusUnauthorized, Message: "bad x-ts"}
	}
	window := signatureWindow.Milliseconds()
	if d := now.UnixMilli() - tsMS; d > window || d < -window {
		return hmacVerifyResult{HTTPStatus: http.StatusUnauthorized, Message: "x-ts outside window"}
	}

	if nonce != "" {
		exp := signHMAC(secret, canonicalStringV2(tsStr, r.Method, r.URL.Path, agentID, nonce, rawBody))
		if hmac.Equal([]byte(sig), []byte(exp)) {
			return hmacVerifyResult{Actor: agentID, Signature: sig}
		}
	}
	if allowLegacy {
		exp := signHMAC(secret, canonicalString(tsStr, r.Method, r.URL.Path, rawBody))
		if hmac.Equal([]byte(sig), []byte(exp)) {
			return hmacVerifyResult{Actor: agentID, Signature: sig}
		}
	}

	if nonce == "" {
		return hmacVerifyResult{HTTPStatus: http.StatusUnauthorized, Message: "missing x-nonce"}
	}
	return hmacVerifyResult{HTTPStatus: http.StatusUnauthorized, Message: "bad signature"}
}

// AllowLegacyHMACFromEnv reads SB_MCP_HMAC_ALLOW_LEGACY, falling back to
// "allowed outside staging/production".
func AllowLegacyHMACFromEnv() bool {
	v := strings.TrimSpace(os.Getenv("SB_MCP_HMAC_ALLOW_LEGACY"))
	if v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func requireLoopback(r *http.Request) error {
	if IsLoopbackAddr(r.RemoteAddr) {
		return nil
	}
	return fmt.Errorf("forbidden: non-loopback client")
}

// IsLoopbackAddr accepts "ip:port", a bare ip, or "localhost".
func IsLoopbackAddr(addr string) bool {
	host := strings.TrimSpace(addr)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}
