package negotiation

type OfferResponse struct {
	ID        string `json:"id"`
	ThreadID  string `json:"thread_id"`
	Sender    string `json:"sender"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	Seq       int    `json:"seq"`
	CreatedAt string `json:"created_at"`
}

// EntryResponse is a thread entry: either a chat message or an offer,
// tagged by Kind. Entries come back totally ordered by Seq.
type EntryResponse struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Seq       int    `json:"seq"`
	CreatedAt string `json:"created_at"`
	Text      string `json:"text,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Status    string `json:"status,omitempty"`
}

type ThreadResponse struct {
	ID              string           `json:"id"`
	ListingID       string           `json:"listing_id"`
	BuyerID         string           `json:"buyer_id"`
	SellerID        string           `json:"seller_id"`
	ListPrice       int64            `json:"list_price"`
	Settled         bool             `json:"settled"`
	AcceptedOfferID string           `json:"accepted_offer_id,omitempty"`
	Entries         []*EntryResponse `json:"entries"`
	CreatedAt       string           `json:"created_at"`
}

const (
	entryKindMessage = "message"
	entryKindOffer   = "offer"
)
