package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(path, []byte("RIFF fake audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSubmitSendsMultipartFile(t *testing.T) {
	var gotField, gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/diarize/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotField = "file"
		gotName = header.Filename
		w.Write([]byte(`{"task_id":"t1","message":"Processing started"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	taskID, err := client.Submit(context.Background(), writeSample(t))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if taskID != "t1" {
		t.Fatalf("taskID = %q, want t1", taskID)
	}
	if gotField != "file" || gotName != "sample.wav" {
		t.Fatalf("multipart field/name = %q/%q", gotField, gotName)
	}
}

func TestSubmitRejectsMissingTaskID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if _, err := client.Submit(context.Background(), writeSample(t)); err == nil {
		t.Fatal("Submit accepted a response without a task id")
	}
}

func TestStatusDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status/t1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"completed","result":[
			{"speaker":"SPEAKER_00","start":0.0,"end":2.5},
			{"speaker":"SPEAKER_01","start":2.5,"end":5.0}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	resp, err := client.Status(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("status = %q", resp.Status)
	}
	if len(resp.Result) != 2 || resp.Result[1].Speaker != "SPEAKER_01" {
		t.Fatalf("result = %+v", resp.Result)
	}
}

func TestStatusSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if _, err := client.Status(context.Background(), "t1"); err == nil {
		t.Fatal("Status swallowed a 500")
	}
}

func TestSpeakers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/speakers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"speakers":["Ada","Grace"],"total":2}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	speakers, err := client.Speakers(context.Background())
	if err != nil {
		t.Fatalf("Speakers: %v", err)
	}
	if len(speakers) != 2 || speakers[0] != "Ada" {
		t.Fatalf("speakers = %v", speakers)
	}
}
