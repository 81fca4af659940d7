package cli

import (
	"net/http"
	"testing"

	transport "company-quiz-service/internal/transport/http"
)

func TestServerWriteTimeoutOutlastsRequestTimeout(t *testing.T) {
	server := newHTTPServer(":0", http.NotFoundHandler())
	if server.WriteTimeout <= transport.RequestTimeout {
		t.Fatalf("write timeout %v must exceed request timeout %v", server.WriteTimeout, transport.RequestTimeout)
	}
	if server.ReadTimeout <= 0 {
		t.Fatalf("expected a read timeout, got %v", server.ReadTimeout)
	}
}
