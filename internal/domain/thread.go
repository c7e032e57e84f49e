package domain

import "time"

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "Pending"
	OfferStatusAccepted OfferStatus = "Accepted"
	OfferStatusRejected OfferStatus = "Rejected"
)

// Offer is a proposed price inside a negotiation thread. Accepted and
// Rejected are terminal; a terminal offer never changes again.
type Offer struct {
	ID        string
	Sender    string
	Amount    int64
	Status    OfferStatus
	Seq       int
	CreatedAt time.Time
}

func (o *Offer) Accept() error {
	if o.Status != OfferStatusPending {
		return ErrInvalidTransition
	}
	o.Status = OfferStatusAccepted
	return nil
}

func (o *Offer) Reject() error {
	if o.Status != OfferStatusPending {
		return ErrInvalidTransition
	}
	o.Status = OfferStatusRejected
	return nil
}

// Message is a plain chat line in a thread.
type Message struct {
	ID     string
	Sender string
	Text   string
	Seq    int
	SentAt time.Time
}

// Thread is the negotiation between one buyer and one seller over one
// listing. Offers and messages share a single sequence counter, so the
// union of both slices is totally ordered by Seq. ListPrice is a snapshot
// of the listing price at the time the thread opened; offer range checks
// key off it.
type Thread struct {
	ID              string
	ListingID       string
	BuyerID         string
	SellerID        string
	ListPrice       int64
	Offers          []*Offer
	Messages        []Message
	AcceptedOfferID string
	NextSeq         int
	CreatedAt       time.Time
	Version         uint64
}

func NewThread(id string, listing *Listing, buyerID string) *Thread {
	return &Thread{
		ID:        id,
		ListingID: listing.ID,
		BuyerID:   buyerID,
		SellerID:  listing.SellerID,
		ListPrice: listing.Price,
		NextSeq:   1,
		CreatedAt: time.Now(),
	}
}

func (t *Thread) IsParty(userID string) bool {
	return userID == t.BuyerID || userID == t.SellerID
}

// Settled reports whether some offer in the thread has been accepted.
func (t *Thread) Settled() bool {
	return t.AcceptedOfferID != ""
}

func (t *Thread) OfferByID(id string) *Offer {
	for _, o := range t.Offers {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (t *Thread) AcceptedOffer() *Offer {
	if t.AcceptedOfferID == "" {
		return nil
	}
	return t.OfferByID(t.AcceptedOfferID)
}

func (t *Thread) AppendOffer(id, sender string, amount int64) *Offer {
	o := &Offer{
		ID:        id,
		Sender:    sender,
		Amount:    amount,
		Status:    OfferStatusPending,
		Seq:       t.nextSeq(),
		CreatedAt: time.Now(),
	}
	t.Offers = append(t.Offers, o)
	return o
}

func (t *Thread) AppendMessage(id, sender, text string) *Message {
	t.Messages = append(t.Messages, Message{
		ID:     id,
		Sender: sender,
		Text:   text,
		Seq:    t.nextSeq(),
		SentAt: time.Now(),
	})
	return &t.Messages[len(t.Messages)-1]
}

func (t *Thread) nextSeq() int {
	seq := t.NextSeq
	t.NextSeq++
	return seq
}

func (t *Thread) Clone() *Thread {
	c := *t
	c.Offers = make([]*Offer, len(t.Offers))
	for i, o := range t.Offers {
		oc := *o
		c.Offers[i] = &oc
	}
	c.Messages = make([]Message, len(t.Messages))
	copy(c.Messages, t.Messages)
	return &c
}
