package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

// CartsCollection holds one document per user with the lines embedded.
const CartsCollection = "carts"

type cartDocument struct {
	UserID    string         `bson:"user_id"`
	Lines     []lineDocument `bson:"lines"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type lineDocument struct {
	ID          string               `bson:"id"`
	ProductID   string               `bson:"product_id"`
	ArtistID    string               `bson:"artist_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	UnitPrice   primitive.Decimal128 `bson:"unit_price"`
	Image       string               `bson:"image"`
	Colors      []string             `bson:"colors"`
	Quantity    int                  `bson:"quantity"`
	TotalPrice  primitive.Decimal128 `bson:"total_price"`
	AddedAt     time.Time            `bson:"added_at"`
}

// MongoRepository is the document store cart repository.
type MongoRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoRepository returns a cart repository backed by a per-user document.
// Line mutations are scoped to the matching array element.
func NewMongoRepository(database *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: database.Collection(CartsCollection), now: time.Now}
}

// CreateIndexes ensures one cart document per user.
func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create cart indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) List(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	doc, err := m.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0)
	if doc == nil {
		return lines, nil
	}
	for _, ld := range doc.Lines {
		line, err := ld.toLine()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart line")
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (m *MongoRepository) FindByProduct(ctx context.Context, userID, productID uuid.UUID) (*Line, error) {
	doc, err := m.load(ctx, userID)
	if err != nil || doc == nil {
		return nil, err
	}
	for _, ld := range doc.Lines {
		if ld.ProductID != productID.String() {
			continue
		}
		line, err := ld.toLine()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart line")
		}
		return &line, nil
	}
	return nil, nil
}

// Insert pushes the line unless one for the same product is present. The
// upsert creates the user's document on first use; when the document exists
// but already holds the product the upsert collides with the unique user
// index and the duplicate is reported as ErrLineExists.
func (m *MongoRepository) Insert(ctx context.Context, userID uuid.UUID, line Line) error {
	ld, err := lineToDocument(line)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode cart line")
	}
	filter := bson.M{
		"user_id":          userID.String(),
		"lines.product_id": bson.M{"$ne": ld.ProductID},
	}
	update := bson.M{
		"$push": bson.M{"lines": ld},
		"$set":  bson.M{"updated_at": m.now().UTC()},
	}
	_, err = m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrLineExists
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart line")
	}
	return nil
}

func (m *MongoRepository) SetQuantity(ctx context.Context, userID, productID uuid.UUID, expected, next int, total decimal.Decimal) error {
	totalValue, err := primitive.ParseDecimal128(total.String())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode line total")
	}
	observed := bson.M{"product_id": productID.String(), "quantity": expected}
	filter := bson.M{"user_id": userID.String(), "lines": bson.M{"$elemMatch": observed}}
	update := bson.M{
		"$set": bson.M{
			"lines.$[line].quantity":    next,
			"lines.$[line].total_price": totalValue,
			"updated_at":                m.now().UTC(),
		},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"line.product_id": productID.String(), "line.quantity": expected},
		},
	})
	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	if result.MatchedCount == 0 {
		return ErrQuantityChanged
	}
	return nil
}

func (m *MongoRepository) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error {
	update := bson.M{
		"$pull": bson.M{"lines": bson.M{"id": lineID.String()}},
		"$set":  bson.M{"updated_at": m.now().UTC()},
	}
	if _, err := m.collection.UpdateOne(ctx, bson.M{"user_id": userID.String()}, update); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return nil
}

func (m *MongoRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	update := bson.M{"$set": bson.M{
		"lines":      []lineDocument{},
		"updated_at": m.now().UTC(),
	}}
	if _, err := m.collection.UpdateOne(ctx, bson.M{"user_id": userID.String()}, update); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (m *MongoRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	doc, err := m.load(ctx, userID)
	if err != nil || doc == nil {
		return 0, err
	}
	return len(doc.Lines), nil
}

func (m *MongoRepository) load(ctx context.Context, userID uuid.UUID) (*cartDocument, error) {
	var doc cartDocument
	err := m.collection.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return &doc, nil
}

func lineToDocument(line Line) (lineDocument, error) {
	unit, err := primitive.ParseDecimal128(line.UnitPrice.String())
	if err != nil {
		return lineDocument{}, err
	}
	total, err := primitive.ParseDecimal128(line.TotalPrice.String())
	if err != nil {
		return lineDocument{}, err
	}
	colors := line.Colors
	if colors == nil {
		colors = []string{}
	}
	return lineDocument{
		ID:          line.ID.String(),
		ProductID:   line.ProductID.String(),
		ArtistID:    line.ArtistID.String(),
		Name:        line.Name,
		Description: line.Description,
		UnitPrice:   unit,
		Image:       line.Image,
		Colors:      colors,
		Quantity:    line.Quantity,
		TotalPrice:  total,
		AddedAt:     line.AddedAt,
	}, nil
}

func (ld lineDocument) toLine() (Line, error) {
	id, err := uuid.Parse(ld.ID)
	if err != nil {
		return Line{}, fmt.Errorf("line id: %w", err)
	}
	productID, err := uuid.Parse(ld.ProductID)
	if err != nil {
		return Line{}, fmt.Errorf("product id: %w", err)
	}
	artistID, err := uuid.Parse(ld.ArtistID)
	if err != nil {
		return Line{}, fmt.Errorf("artist id: %w", err)
	}
	unit, err := decimal.NewFromString(ld.UnitPrice.String())
	if err != nil {
		return Line{}, fmt.Errorf("unit price: %w", err)
	}
	total, err := decimal.NewFromString(ld.TotalPrice.String())
	if err != nil {
		return Line{}, fmt.Errorf("total price: %w", err)
	}
	colors := ld.Colors
	if colors == nil {
		colors = []string{}
	}
	return Line{
		ID:          id,
		ProductID:   productID,
		ArtistID:    artistID,
		Name:        ld.Name,
		Description: ld.Description,
		UnitPrice:   unit,
		Image:       ld.Image,
		Colors:      colors,
		Quantity:    ld.Quantity,
		TotalPrice:  total,
		AddedAt:     ld.AddedAt,
	}, nil
}
