package services

import "testing"

func TestNewAlpacaService(t *testing.T) {
	service := NewAlpacaService("test-key", "test-secret")
	if service == nil {
		t.Fatal("NewAlpacaService should not return nil")
	}
	if service.dataClient == nil {
		t.Error("dataClient should not be nil")
	}
}
