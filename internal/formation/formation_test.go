package formation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/rail-log/backend/internal/formation"
)

func TestClient_Formation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("train_number") {
		case "902A":
			w.Write([]byte(`{"formation":"サイ133"}`))
		case "777M":
			w.Write([]byte(`{"formation":"N/A"}`)) // service's unknown sentinel
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := formation.NewClient(srv.URL)
	ctx := context.Background()

	assert.Equal(t, "サイ133", c.Formation(ctx, "902A"))
	assert.Empty(t, c.Formation(ctx, "777M"), "sentinel means unknown")
	assert.Empty(t, c.Formation(ctx, "999Z"), "HTTP error means unknown")
	assert.Empty(t, c.Formation(ctx, ""))
}

func TestNoop(t *testing.T) {
	assert.Empty(t, formation.Noop{}.Formation(context.Background(), "902A"))
}
