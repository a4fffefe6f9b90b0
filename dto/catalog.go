package dto

type CreateLevelRequest struct {
	Title string `json:"title" validate:"required,max=100"`
	Order int    `json:"order" validate:"gte=0"`
}

type CreatePrizeRequest struct {
	Title string `json:"title" validate:"required,max=100"`
}

type ExportArchiveRequest struct {
	Object string `json:"object" validate:"omitempty,max=255"`
}

type ExportArchiveResponse struct {
	Object string `json:"object"`
	Rows   int    `json:"rows"`
	URL    string `json:"url,omitempty"`
}
