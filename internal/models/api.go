package models

type ChatRequest struct {
	Query string `json:"query" binding:"required"`
}

type ChatResponse struct {
	Response string            `json:"response"`
	Products []ProductResponse `json:"products"`
}

type ProductResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url,omitempty"`
	Category    string  `json:"category,omitempty"`
	ProductURL  string  `json:"product_url,omitempty"`
	Features    JSONMap `json:"features,omitempty"`
}

// ToProductResponse maps a Product row to its API shape.
func ToProductResponse(p Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		ProductURL:  p.ProductURL,
		Features:    p.Features,
	}
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
