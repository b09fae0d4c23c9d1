package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	"github.com/angelmondragon/soundstall-backend/pkg/types"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("not enough items in stock")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrLineNotFound      = errors.New("product not found in cart")

	// ErrLineExists is returned by Insert when the user already holds a line
	// for the product.
	ErrLineExists = errors.New("cart line already exists")
	// ErrQuantityChanged is returned by SetQuantity when the stored quantity
	// no longer matches the one the caller observed.
	ErrQuantityChanged = errors.New("cart line changed concurrently")
)

// Line is one product in a user's cart. Product fields are a snapshot taken
// when the line was first added.
type Line struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ArtistID    uuid.UUID       `json:"artist_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Image       string          `json:"image"`
	Colors      []string        `json:"colors"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	AddedAt     time.Time       `json:"added_at"`
}

// View is the cart listing returned to clients.
type View struct {
	Cart       []Line `json:"cart"`
	TotalItems int    `json:"total_items"`
}

// LineTotal is the price of quantity units at unitPrice.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

func snapshot(product *models.Product, quantity int, now time.Time) Line {
	colors := append([]string{}, product.Colors...)
	return Line{
		ID:          uuid.New(),
		ProductID:   product.ID,
		ArtistID:    product.ArtistID,
		Name:        product.Name,
		Description: product.Description,
		UnitPrice:   product.Price,
		Image:       product.Image,
		Colors:      colors,
		Quantity:    quantity,
		TotalPrice:  LineTotal(product.Price, quantity),
		AddedAt:     now.UTC(),
	}
}

func lineFromModel(item models.CartItem) Line {
	colors := []string(item.Colors)
	if colors == nil {
		colors = []string{}
	}
	return Line{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ArtistID:    item.ArtistID,
		Name:        item.Name,
		Description: item.Description,
		UnitPrice:   item.UnitPrice,
		Image:       item.Image,
		Colors:      colors,
		Quantity:    item.Quantity,
		TotalPrice:  item.TotalPrice,
		AddedAt:     item.AddedAt,
	}
}

func lineToModel(userID uuid.UUID, line Line) models.CartItem {
	return models.CartItem{
		ID:          line.ID,
		UserID:      userID,
		ProductID:   line.ProductID,
		ArtistID:    line.ArtistID,
		Name:        line.Name,
		Description: line.Description,
		UnitPrice:   line.UnitPrice,
		Image:       line.Image,
		Colors:      types.StringList(line.Colors),
		Quantity:    line.Quantity,
		TotalPrice:  line.TotalPrice,
		AddedAt:     line.AddedAt,
	}
}
