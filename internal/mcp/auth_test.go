package mcp

import (
	"bytes"
	"net/http"
	"testing"
	"time"
)

func TestHMAC_SignAndVerify_Vector(t *testing.T) {
	secret := []byte("topsecret")
	ts := "1700000000000"
	method := "POST"
	path := "/mcp"
	body := []byte("{\"jsonrpc\":\"2.0\",\"id\":1,\"method\":\"list_tools\"}")

	canon := canonicalString(ts, method, path, body)
	got := signHMAC(secret, canon)
	want := "8d8937fdcea524a9301a74e8e2e4b3ee64ea5ae993f29219d57d0cd3d276613b"
	if got != want {
		t.Fatalf("signature mismatch: got=%s want=%s", got, want)
	}

	req, _ := http.NewRequest(method, "http://example.invalid"+path, bytes.NewReader(body))
	req.Header.Set(headerAgentID, "agent_1")
	req.Header.Set(headerTS, ts)
	req.Header.Set(headerSignature, want)

	vr := verifyHMAC(req, body, secret, time.UnixMilli(1700000000000), true)
	if vr.HTTPStatus != 0 {
		t.Fatalf("expected ok, got status=%d msg=%s", vr.HTTPStatus, vr.Message)
	}
	if vr.Actor != "agent_1" {
		t.Fatalf("actor mismatch: %q", vr.Actor)
	}

	strict := verifyHMAC(req, body, secret, time.UnixMilli(1700000000000), false)
	if strict.HTTPStatus != http.StatusUnauthorized || strict.Message != "missing x-nonce" {
		t.Fatalf("legacy signature accepted without nonce: %+v", strict)
	}
}

func TestHMAC_SignRequest_V2(t *testing.T) {
	secret := []byte("topsecret")
	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	now := time.UnixMilli(1700000000000)

	req, _ := http.NewRequest("POST", "http://example.invalid/mcp", bytes.NewReader(body))
	SignRequest(req, body, secret, "agent_2", "n-1", now)
	if vr := verifyHMAC(req, body, secret, now.Add(time.Second), false); vr.HTTPStatus != 0 || vr.Actor != "agent_2" {
		t.Fatalf("v2 verify failed: %+v", vr)
	}

	tampered := append([]byte(nil), body...)
	tampered[len(tampered)-2] = 'X'
	if vr := verifyHMAC(req, tampered, secret, now, false); vr.Message != "bad signature" {
		t.Fatalf("tampered body accepted: %+v", vr)
	}
}

func TestHMAC_Verify_Expired(t *testing.T) {
	secret := []byte("topsecret")
	ts := "1700000000000"
	body := []byte("{\"jsonrpc\":\"2.0\"}")
	sig := signHMAC(secret, canonicalString(ts, "POST", "/mcp", body))

	req, _ := http.NewRequest("POST", "http://example.invalid/mcp", bytes.NewReader(body))
	req.Header.Set(headerAgentID, "agent_1")
	req.Header.Set(headerTS, ts)
	req.Header.Set(headerSignature, sig)

	vr := verifyHMAC(req, body, secret, time.UnixMilli(1700000000000+301_000), true)
	if vr.HTTPStatus != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", vr.HTTPStatus)
	}
}

func TestIsLoopbackAddr(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5555": true,
		"[::1]:80":       true,
		"localhost":      true,
		"10.0.0.4:1234":  false,
		"example.com:80": false,
	}
	for addr, want := range cases {
		if got := IsLoopbackAddr(addr); got != want {
			t.Fatalf("IsLoopbackAddr(%q)=%v want %v", addr, got, want)
		}
	}
}
