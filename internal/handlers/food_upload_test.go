package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseMultipartFoodRequestParsesFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("name", "  Greek Salad ")
	_ = writer.WriteField("description", "Fresh and healthy")
	_ = writer.WriteField("category", "Salad")
	_ = writer.WriteField("price", "12")
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/food/add", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	parsed, err := parseMultipartFoodRequest(c)
	if err != nil {
		t.Fatalf("parseMultipartFoodRequest returned error: %v", err)
	}
	if parsed.Name != "Greek Salad" {
		t.Fatalf("expected trimmed name, got %q", parsed.Name)
	}
	if !parsed.PriceSet || parsed.Price != 12 {
		t.Fatalf("expected price=12, got %+v", parsed)
	}
	if parsed.ImageSet {
		t.Fatal("expected no image without an image part")
	}
}

func TestParseMultipartFoodRequestRejectsBadPrice(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	_ = writer.WriteField("name", "Greek Salad")
	_ = writer.WriteField("price", "twelve")
	_ = writer.Close()

	req := httptest.NewRequest("POST", "/api/food/add", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	if _, err := parseMultipartFoodRequest(c); err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}
