package testutil

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"lodgeportal/internal/auth"
	"lodgeportal/internal/entity"
	"lodgeportal/internal/httpx"
)

// TestSecret signs session tokens in tests.
const TestSecret = "test-secret"

// TestAprendiz is a mock apprentice user for testing
var TestAprendiz = entity.User{
	Username: "aprendiz",
	Name:     "Pedro Aluno",
	Email:    "pedro@example.com",
	Role:     "aprendiz",
}

// TestCompanheiro is a mock companion user for testing
var TestCompanheiro = entity.User{
	Username: "companheiro",
	Name:     "Joao Oficial",
	Email:    "joao@example.com",
	Role:     "companheiro",
}

// TestMestre is a mock master user for testing
var TestMestre = entity.User{
	Username: "mestre",
	Name:     "Jose da Silva",
	Email:    "jose@example.com",
	Role:     "mestre",
}

// SessionCookie returns a valid session cookie for user.
func SessionCookie(user entity.User) *http.Cookie {
	token, _ := auth.GenerateToken(TestSecret, user, time.Hour)
	return &http.Cookie{Name: httpx.SessionCookieName, Value: token}
}

// NewRequest creates a new JSON HTTP request for testing.
func NewRequest(method, path string, body interface{}) *http.Request {
	var r *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	return r
}

// NewSessionRequest creates a request carrying a session cookie for user.
func NewSessionRequest(method, path string, body interface{}, user entity.User) *http.Request {
	r := NewRequest(method, path, body)
	r.AddCookie(SessionCookie(user))
	return r
}

// MultipartRequest builds a multipart form request with the given text
// fields and files (field name to file name and content).
func MultipartRequest(path string, fields map[string]string, files map[string][2]string, user entity.User) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for field, nameAndContent := range files {
		fw, _ := mw.CreateFormFile(field, nameAndContent[0])
		fw.Write([]byte(nameAndContent[1]))
	}
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, path, &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.AddCookie(SessionCookie(user))
	return r
}

// TinyPNG returns a minimal valid PNG, handy as an uploaded cover.
func TinyPNG() []byte {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	return buf.Bytes()
}

// RecordResponse captures the recorded HTTP response for assertions.
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]interface{}
	Raw    []byte
}

// RecordHTTPResponse decodes the recorder into a RecordResponse.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	raw, _ := io.ReadAll(result.Body)

	var bodyMap map[string]interface{}
	if len(raw) > 0 {
		json.NewDecoder(bytes.NewReader(raw)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
		Raw:    raw,
	}
}
