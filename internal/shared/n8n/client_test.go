package n8n

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNotifyShipmentPostsJSON(t *testing.T) {
	var got ShipmentPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	payload := &ShipmentPayload{
		Order:       map[string]string{"order_number": "SO-202608270001"},
		Files:       []FileRef{{ID: "f-1", FileName: "packing-list.pdf", DownloadURL: "https://files.test/a.pdf"}},
		SeapodInfo:  &SeapodInfo{Serial: "SN-100", HWVersion: "3.1"},
		TriggeredAt: time.Now(),
	}
	if err := client.NotifyShipment(context.Background(), payload); err != nil {
		t.Fatalf("NotifyShipment: %v", err)
	}
	if len(got.Files) != 1 || got.Files[0].DownloadURL != "https://files.test/a.pdf" {
		t.Fatalf("payload not transmitted intact: %+v", got.Files)
	}
	if got.SeapodInfo == nil || got.SeapodInfo.Serial != "SN-100" {
		t.Fatalf("seapod info lost in transit: %+v", got.SeapodInfo)
	}
}

func TestNotifyShipmentNon2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow disabled", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	err := client.NotifyShipment(context.Background(), &ShipmentPayload{})
	if err == nil {
		t.Fatal("expected error on 503")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "workflow disabled") {
		t.Fatalf("error should carry status and body snippet: %v", err)
	}
}

func TestNotifyShipmentUnconfiguredURL(t *testing.T) {
	client := NewClient("", "")
	if err := client.NotifyShipment(context.Background(), &ShipmentPayload{}); err == nil {
		t.Fatal("expected error when shipping url is not configured")
	}
}

func TestLookupVesselFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["vessel"] != "MV Aurora" {
			t.Errorf("unexpected vessel in request: %q", req["vessel"])
		}
		json.NewEncoder(w).Encode(map[string]string{"account": "Aurora Shipping Co"})
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	account, found, err := client.LookupVessel(context.Background(), "MV Aurora")
	if err != nil {
		t.Fatalf("LookupVessel: %v", err)
	}
	if !found || account != "Aurora Shipping Co" {
		t.Fatalf("expected hit, got account=%q found=%v", account, found)
	}
}

func TestLookupVesselNullAccountMeansMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"account": null}`))
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	account, found, err := client.LookupVessel(context.Background(), "MV Ghost")
	if err != nil {
		t.Fatalf("LookupVessel: %v", err)
	}
	if found || account != "" {
		t.Fatalf("null account must be a miss, got account=%q found=%v", account, found)
	}
}

func TestLookupVesselBlankVesselRejected(t *testing.T) {
	client := NewClient("", "http://unused")
	if _, _, err := client.LookupVessel(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty vessel name")
	}
}
