package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ListLinks carries the navigation links for offset-paginated responses.
// Next/Prev are omitted when there is no page in that direction.
type ListLinks struct {
	Self string  `json:"self"`
	Next *string `json:"next,omitempty"`
	Prev *string `json:"prev,omitempty"`
}

// ListEnvelope is the shared wire shape for list endpoints. Total and Pages
// are zero in cursor mode; Cursor is empty in offset mode and on the last
// cursor page.
type ListEnvelope struct {
	Data     any       `json:"data"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
	Total    int64     `json:"total"`
	Pages    int       `json:"pages"`
	Links    ListLinks `json:"links"`
	Cursor   string    `json:"cursor,omitempty"`
}
