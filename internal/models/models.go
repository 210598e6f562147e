package models

// PriceUnavailable marks a book with no list price in the catalog.
const PriceUnavailable = "unavailable"

// TopicNone is the topic sentinel for a non-purchase intent.
const TopicNone = "Null"

// Book is a catalog entry enriched from the book metadata service.
// ID is the catalog's stable volume/document identifier; Title is what the
// language model proposed and is not guaranteed unique.
type Book struct {
	ID            string   `json:"id,omitempty"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Price         string   `json:"price,omitempty"`
}

// Intent is the structured purchase decision extracted from free text.
// Quantity 0 together with TopicNone means "not a purchase".
type Intent struct {
	Quantity int    `json:"quantity"`
	Topic    string `json:"topic"`
}

// NoPurchase is the safe fallback intent for unparseable input.
func NoPurchase() Intent {
	return Intent{Quantity: 0, Topic: TopicNone}
}

// IsPurchase reports whether the intent asks to buy books.
func (i Intent) IsPurchase() bool {
	return i.Quantity > 0 && i.Topic != TopicNone && i.Topic != ""
}

// Profile is the per-user preference and entitlement record from the
// document store. All fields are optional; readers substitute defaults.
type Profile struct {
	UserID          string   `json:"user_id"`
	Preferences     []string `json:"preferences,omitempty"`
	Wishlist        []string `json:"wishlist,omitempty"`
	OwnedBooks      []string `json:"owned_books,omitempty"`
	PreferredFormat string   `json:"preferred_format,omitempty"`
	DefaultPayment  string   `json:"default_payment,omitempty"`
	DefaultAddress  string   `json:"default_address,omitempty"`
	Recommendations []Book   `json:"recommendations,omitempty"`
}

// Defaults substituted when a profile field is empty.
const (
	DefaultFormat  = "Paperback"
	DefaultPayment = "Credit Card"
)

// Format returns the user's preferred format, defaulted.
func (p *Profile) Format() string {
	if p.PreferredFormat == "" {
		return DefaultFormat
	}
	return p.PreferredFormat
}

// Payment returns the user's payment method, defaulted.
func (p *Profile) Payment() string {
	if p.DefaultPayment == "" {
		return DefaultPayment
	}
	return p.DefaultPayment
}

// Owns reports whether the user already owns a book with this exact title.
func (p *Profile) Owns(title string) bool {
	for _, t := range p.OwnedBooks {
		if t == title {
			return true
		}
	}
	return false
}

// PurchaseOffer is a fully composed, ready-to-confirm purchase record.
type PurchaseOffer struct {
	UserID          string `json:"user_id"`
	BookTitle       string `json:"book_title"`
	Author          string `json:"author"`
	Price           string `json:"price"`
	Format          string `json:"format"`
	PaymentMethod   string `json:"payment_method"`
	ShippingAddress string `json:"shipping_address"`
}

// ChatResult is what every front-end (HTTP, voice, CLI) gets back from the
// assistant: a natural-language message plus whatever structured lists
// could be assembled.
type ChatResult struct {
	Message           string          `json:"message"`
	RequestedQuantity int             `json:"requested_quantity,omitempty"`
	RequestedTopic    string          `json:"requested_topic,omitempty"`
	FoundBooks        []Book          `json:"found_books"`
	PurchaseDetails   []PurchaseOffer `json:"purchase_details"`
}
