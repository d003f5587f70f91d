package jsonpath

import (
	"encoding/json"
	"errors"
	"testing"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestPathString(t *testing.T) {
	root := decode(t, `{
		"text": "hello",
		"data": {"items": [{"value": "a"}, {"value": "b"}]},
		"results": [{"alternatives": [{"transcript": "ok"}]}],
		"n": 42, "f": 1.5, "flag": true, "nested": [[1, 2], [3, 4]]
	}`)

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"data.items[1].value", "b", true},
		{"results[0].alternatives[0].transcript", "ok", true},
		{"data.items[99].value", "", false},
		{"n", "42", true},
		{"f", "1.5", true},
		{"flag", "true", true},
		{"nested[1][0]", "3", true},
		{"data", "", false},
		{"text.more", "", false},
	}
	for _, tt := range tests {
		p, err := Compile(tt.path)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tt.path, err)
		}
		got, ok := p.String(root)
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCompileRejectsBadPaths(t *testing.T) {
	for _, bad := range []string{"", "a..b", "foo[", "foo[]", "foo[x]", "foo[-1]", "foo[0]x"} {
		if _, err := Compile(bad); err == nil {
			t.Errorf("Compile(%q) succeeded", bad)
		}
	}
}

func TestTranscript(t *testing.T) {
	body := []byte(`{"results":[{"alternatives":[{"transcript":"deep"}]}],"text":"top"}`)
	if got, _ := Transcript(body, "results[0].alternatives[0].transcript"); got != "deep" {
		t.Fatalf("expected deep, got %q", got)
	}
	if got, _ := Transcript(body, "missing.path"); got != "top" {
		t.Fatalf("expected fallback to text, got %q", got)
	}
	if got, err := Transcript([]byte(`{"text":""}`), "text"); err != nil || got != "" {
		t.Fatalf("expected empty text, got %q (%v)", got, err)
	}
	if got, _ := Transcript([]byte(`{"language":"en"}`), "text"); got != "" {
		t.Fatalf("expected no transcript, got %q", got)
	}
	for _, body := range []string{"not json", "42\n", "true", `"hello"`, "null"} {
		if _, err := Transcript([]byte(body), "text"); !errors.Is(err, ErrNotJSON) {
			t.Fatalf("Transcript(%q): expected ErrNotJSON, got %v", body, err)
		}
	}
}

func TestExtractErrorMessage(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"error":{"message":"Invalid API key","type":"invalid_request_error"}}`, "Invalid API key"},
		{`{"message":"model not found"}`, "model not found"},
		{`{"error":"quota exceeded"}`, "quota exceeded"},
		{`{"detail":[{"loc":["body","file"],"msg":"field required"}]}`, "field required"},
		{`{"status":"bad"}`, ""},
		{`<html>502</html>`, ""},
	}
	for _, tc := range cases {
		if got := ExtractErrorMessage([]byte(tc.body)); got != tc.want {
			t.Fatalf("ExtractErrorMessage(%s) = %q, want %q", tc.body, got, tc.want)
		}
	}
}
