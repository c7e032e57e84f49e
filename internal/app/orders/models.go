package orders

type ReviewResponse struct {
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

type OrderResponse struct {
	ID          string          `json:"id"`
	ListingID   string          `json:"listing_id"`
	BuyerID     string          `json:"buyer_id"`
	SellerID    string          `json:"seller_id"`
	Price       int64           `json:"price"`
	Status      string          `json:"status"`
	ReservedAt  string          `json:"reserved_at"`
	CompletedAt string          `json:"completed_at,omitempty"`
	Review      *ReviewResponse `json:"review,omitempty"`
}
