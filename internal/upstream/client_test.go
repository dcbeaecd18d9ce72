package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, 2*time.Second, nil)
}

func TestCallSendsActionEnvelope(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"success": true, "data": [{"product_id": 7, "name": "Paracetamol", "quantity": "12"}]}`))
	})

	products, err := client.Products(context.Background())
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if gotBody["action"] != "get_products" {
		t.Fatalf("action = %v, want get_products", gotBody["action"])
	}
	if len(products) != 1 || products[0].ID != "7" || products[0].TotalQuantity != 12 {
		t.Fatalf("products = %+v", products)
	}
}

func TestCallErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    ErrorKind
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"success": true}`))
			},
			want: KindRejected,
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			want:    KindMalformed,
		},
		{
			name: "html error page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<br />\n<b>Warning</b>: something in index.php"))
			},
			want: KindMalformed,
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success": tru`))
			},
			want: KindMalformed,
		},
		{
			name: "success false",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success": false, "message": "unknown action"}`))
			},
			want: KindRejected,
		},
		{
			name: "data wrong shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success": true, "data": {"not": "a list"}}`))
			},
			want: KindMalformed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Products(context.Background())
			if err == nil {
				t.Fatal("want error")
			}
			if got := KindOf(err); got != tt.want {
				t.Fatalf("kind = %s, want %s (err: %v)", got, tt.want, err)
			}
		})
	}
}

func TestCallTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"success": true, "data": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 50*time.Millisecond, nil)
	_, err := client.Products(context.Background())
	if err == nil {
		t.Fatal("want timeout error")
	}
	if kind := KindOf(err); kind != KindTimeout {
		t.Fatalf("kind = %s, want %s (err: %v)", kind, KindTimeout, err)
	}
}

func TestCallNetworkError(t *testing.T) {
	// Nothing listens here.
	client := NewClient("http://127.0.0.1:1", time.Second, nil)
	_, err := client.Products(context.Background())
	if err == nil {
		t.Fatal("want network error")
	}
	if kind := KindOf(err); kind != KindNetwork {
		t.Fatalf("kind = %s, want %s (err: %v)", kind, KindNetwork, err)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if kind := KindOf(context.Canceled); kind != "" {
		t.Fatalf("kind = %q, want empty for non-upstream error", kind)
	}
}

func TestCreateBatchParams(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"success": true}`))
	})

	expiry := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	err := client.CreateBatch(context.Background(), BatchEntry{
		ProductID:      "p1",
		BatchReference: "BR-20250901-120000000-123",
		Quantity:       60,
		UnitCost:       1.5,
		Expiry:         &expiry,
		EnteredBy:      "warehouse",
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if gotBody["action"] != "add_product_batch" {
		t.Fatalf("action = %v", gotBody["action"])
	}
	if gotBody["expiration_date"] != "2025-06-01" {
		t.Fatalf("expiration_date = %v", gotBody["expiration_date"])
	}
	if gotBody["batch_reference"] != "BR-20250901-120000000-123" {
		t.Fatalf("batch_reference = %v", gotBody["batch_reference"])
	}
}
