/*
Package response centralizes HTTP response shaping. Status-code mapping
lives here and only here; domain and application layers never see HTTP.
Internal failures are logged in full but reach clients as a generic message.
*/
package response

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// Response is the uniform envelope for all endpoints.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// PaginatedResponse wraps a page of results.
type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
	Message    string      `json:"message"`
	Code       int         `json:"code"`
	RequestID  string      `json:"request_id,omitempty"`
}

// Pagination carries paging echo fields.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}
