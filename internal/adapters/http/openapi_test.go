package httpadapter

import (
	"context"
	"net/http"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

func TestOpenAPIDocumentIsServedAndValid(t *testing.T) {
	handler := newTestRouter(&wordlistFake{})

	res, body := doRequest(t, handler, http.MethodGet, "/openapi.json")
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	paths, ok := body["paths"].(map[string]any)
	if !ok {
		t.Fatalf("expected paths object in document")
	}
	for _, route := range []string{"/files", "/search/{filename}", "/update/{filename}/{item_id}", "/stats/{filename}"} {
		if _, ok := paths[route]; !ok {
			t.Fatalf("missing %s in openapi document", route)
		}
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(res.Body.Bytes())
	if err != nil {
		t.Fatalf("reload served document: %v", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("served document is not a valid OpenAPI 3 contract: %v", err)
	}
}
