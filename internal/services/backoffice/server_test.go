package backoffice

import (
	"context"
	"testing"
	"time"
)

func TestNewServerValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing address", cfg: Config{RecordsURL: "http://localhost:8091"}},
		{name: "missing records url", cfg: Config{HTTPAddr: ":0"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewServer(context.Background(), tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestServerStopsWithContext(t *testing.T) {
	server, err := NewServer(context.Background(), Config{HTTPAddr: "127.0.0.1:0", RecordsURL: "http://localhost:8091", RequestTimeout: time.Second})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.ListenAndServe(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("listen and serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNilServerClose(t *testing.T) {
	var server *Server
	if err := server.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
