package jsonpath

import "encoding/json"

var errorPaths = []Path{
	MustCompile("error.message"),
	MustCompile("message"),
	MustCompile("error"),
	MustCompile("detail"),
	MustCompile("detail[0].msg"),
	MustCompile("error.detail"),
}

// ExtractErrorMessage returns the human readable message from a JSON error
// body such as {"error":{"message":"..."}} or {"detail":"..."}. It returns
// "" when the body is not JSON or carries no known message field.
func ExtractErrorMessage(body []byte) string {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return ""
	}
	for _, p := range errorPaths {
		if v, ok := p.String(root); ok && v != "" {
			return v
		}
	}
	return ""
}
