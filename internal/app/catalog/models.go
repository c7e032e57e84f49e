package catalog

type CreateListingRequest struct {
	SellerID    string `json:"seller_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Condition   string `json:"condition"`
	Category    string `json:"category"`
	Department  string `json:"department"`
}

type ListingResponse struct {
	ID          string `json:"id"`
	SellerID    string `json:"seller_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Condition   string `json:"condition"`
	Category    string `json:"category"`
	Department  string `json:"department"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}
