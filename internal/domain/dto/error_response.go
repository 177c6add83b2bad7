package dto

import "time"

// ErrorResponse is the JSON body returned by every failing endpoint.
//
// Fields:
//   - Message: short, user-facing description of the failure.
//   - ErrorDetails: underlying error text, omitted when there is none.
//   - Timestamp: moment the response was built (UTC).
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid date format, expected YYYY-MM-DD"`
	ErrorDetails string    `json:"error_details,omitempty" example:"parsing time \"2025/01/01\""`
	Timestamp    time.Time `json:"timestamp" example:"2025-09-18T21:30:00Z"`
}

// Error implements the error interface so handlers can pass it to c.Error.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse, copying err's text into ErrorDetails when err is non-nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
