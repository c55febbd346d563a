package models

// ApiResponse is the envelope every handler answers with. Domain rejections
// carry Error and the status from StatusForError; list endpoints attach a Page
// block so clients unmarshal pagination uniformly instead of scraping
// top-level counters.
type ApiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Page    *Page       `json:"page,omitempty"`
}

// Page describes one slice of a browse result. Total counts every match, not
// just the slice returned.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(err string) ApiResponse {
	return ApiResponse{
		Success: false,
		Error:   err,
	}
}

func PaginatedResponse(data interface{}, page, limit, total int) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Page:    &Page{Page: page, Limit: limit, Total: total},
	}
}
