package checkout

import "github.com/silkiy/storefront/models"

type ItemStatus string

const (
	ItemAvailable   ItemStatus = "available"
	ItemUnavailable ItemStatus = "unavailable"
	ItemNotFound    ItemStatus = "not_found"
	ItemError       ItemStatus = "error"
)

// ItemOutcome is the result of one reservation attempt. Product carries the
// post-decrement snapshot when available, the read snapshot otherwise.
type ItemOutcome struct {
	Status  ItemStatus
	Item    OrderItemInput
	Product *models.Product
	Err     error
}

// UnavailableProduct is what the 409 response shows the user per rejected line.
type UnavailableProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Stock    int    `json:"stock"`
	Quantity int    `json:"quantity"`
}

type Aggregate struct {
	Reserved []ItemOutcome
	Rejected []ItemOutcome
}

// Partition splits outcomes into reserved vs rejected. Errors count as
// rejected (fail-closed).
func Partition(outcomes []ItemOutcome) Aggregate {
	var agg Aggregate
	for _, oc := range outcomes {
		if oc.Status == ItemAvailable {
			agg.Reserved = append(agg.Reserved, oc)
		} else {
			agg.Rejected = append(agg.Rejected, oc)
		}
	}
	return agg
}

func (a Aggregate) Shortfall() int { return len(a.Rejected) }

func (a Aggregate) UnavailableProducts() []UnavailableProduct {
	out := make([]UnavailableProduct, 0, len(a.Rejected))
	for _, oc := range a.Rejected {
		u := UnavailableProduct{
			ID:       oc.Item.Product,
			Quantity: oc.Item.Quantity,
		}
		if oc.Product != nil {
			u.Name = oc.Product.Name
			u.Image = oc.Product.Image
			u.Stock = oc.Product.Stock
		}
		out = append(out, u)
	}
	return out
}
