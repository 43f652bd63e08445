package store

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices are plain JSON numbers in the persisted document.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	CollectionUsers    = "users"
	CollectionProducts = "products"
	CollectionOrders   = "orders"
)

const StatusPending = "pending"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	RegisteredAt time.Time `json:"registered_at"`
}

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
}

type LineItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type Order struct {
	ID        int             `json:"id"`
	UserID    int             `json:"user_id"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Document is the whole persisted dataset. It is always read and written
// as one unit.
type Document struct {
	Users    []User    `json:"users"`
	Products []Product `json:"products"`
	Orders   []Order   `json:"orders"`

	// Sequences holds the last id issued per collection. Older documents
	// without it are handled by NextID.
	Sequences map[string]int `json:"sequences,omitempty"`
}

func NewDocument() *Document {
	return &Document{
		Users:    []User{},
		Products: []Product{},
		Orders:   []Order{},
	}
}

// normalize replaces nil collections so the document always serializes
// with three lists.
func (d *Document) normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Products == nil {
		d.Products = []Product{}
	}
	if d.Orders == nil {
		d.Orders = []Order{}
	}
}

// NextID issues the next identifier for collection. Ids are monotonic:
// they never go backwards even if records are removed from the document.
func (d *Document) NextID(collection string) int {
	last := d.Sequences[collection]
	if m := d.maxID(collection); m > last {
		last = m
	}
	next := last + 1

	if d.Sequences == nil {
		d.Sequences = make(map[string]int, 3)
	}
	d.Sequences[collection] = next
	return next
}

func (d *Document) maxID(collection string) int {
	m := 0
	switch collection {
	case CollectionUsers:
		for _, u := range d.Users {
			m = max(m, u.ID)
		}
	case CollectionProducts:
		for _, p := range d.Products {
			m = max(m, p.ID)
		}
	case CollectionOrders:
		for _, o := range d.Orders {
			m = max(m, o.ID)
		}
	}
	return m
}

func (d *Document) UserByID(id int) (*User, bool) {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i], true
		}
	}
	return nil, false
}

func (d *Document) ProductByID(id int) (*Product, bool) {
	for i := range d.Products {
		if d.Products[i].ID == id {
			return &d.Products[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy, so callers holding the copy cannot mutate
// the source through shared slices.
func (d *Document) Clone() *Document {
	c := &Document{
		Users:    append([]User{}, d.Users...),
		Products: append([]Product{}, d.Products...),
		Orders:   make([]Order, len(d.Orders)),
	}
	for i, o := range d.Orders {
		o.Items = append([]LineItem{}, o.Items...)
		c.Orders[i] = o
	}
	if d.Sequences != nil {
		c.Sequences = make(map[string]int, len(d.Sequences))
		for k, v := range d.Sequences {
			c.Sequences[k] = v
		}
	}
	return c
}
